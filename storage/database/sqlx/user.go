package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

const userColumns = "id, name, email, role, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := "SELECT id FROM users WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		if q, args, err = sqlx.In(q+" AND id NOT IN (?)", email, ids); err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var found []int
	if err := repo.db.SelectContext(ctx, &found, repo.db.Rebind(q+" LIMIT 1"), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if len(found) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		INSERT INTO users (name, email, role, password_hash, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q,
		usr.Name, usr.Email, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	).Scan(&usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + where)
	if err := repo.db.GetContext(ctx, &usr, q, arg); err != nil {
		return user.User{}, notFound(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = ?", email)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		UPDATE users SET name = ?, email = ?, role = ?, password_hash = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q,
		usr.Name, usr.Email, usr.Role, usr.PasswordHash, usr.UpdatedAt, usr.LastLogin, usr.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	// drop expired entries while we are at it
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM revoked_tokens WHERE expires_at < ?"), time.Now().UTC()); err != nil {
		return errors.Wrap(err, "purging revoked tokens")
	}
	q := repo.db.Rebind("INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)")
	if _, err := repo.db.ExecContext(ctx, q, jti, expiresAt); err != nil && !isUniqueViolation(err) {
		return errors.Wrap(err, "revoking token")
	}
	return nil
}

func (repo *userRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var found []string
	q := repo.db.Rebind("SELECT jti FROM revoked_tokens WHERE jti = ? LIMIT 1")
	if err := repo.db.SelectContext(ctx, &found, q, jti); err != nil {
		return false, errors.Wrap(err, "checking revoked token")
	}
	return len(found) > 0, nil
}
