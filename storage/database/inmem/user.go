package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, ex := range excludedUsers {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users.rows {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users.rows {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = repo.db.users.insert(usr)
	repo.db.users.rows[usr.ID].ID = usr.ID
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users.rows[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users.rows {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users.rows[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.db.users.rows {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.users.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now()
	for id, exp := range repo.db.revokedTokens {
		if exp.Before(now) {
			delete(repo.db.revokedTokens, id)
		}
	}
	repo.db.revokedTokens[jti] = expiresAt
	return nil
}

func (repo *userRepository) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.revokedTokens[jti]
	return ok, nil
}
