package user

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("The email has already been taken.")
	ErrInvalidCredentials = errors.New("Invalid Credentials")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if any user other than excludedUsers has this email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)

		RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
		IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create registers a new User then sends them a welcome email.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := NowFunc().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	now := NowFunc().UTC()
	usr.LastLogin = &now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

// AddUser updates the password, name & role of the User with this email or creates it.
func (svc *Service) AddUser(ctx context.Context, name, email, role, pwd string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	now := NowFunc().UTC()

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		usr = User{Email: email, CreatedAt: now}
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}

	if name = core.CleanString(name); name != "" {
		usr.Name = name
	}
	usr.Role = role
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	if usr.ID == 0 {
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = NowFunc().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// RevokeToken blacklists the token identified by jti until it expires.
func (svc *Service) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("token has no id")
	}
	return svc.repo.RevokeToken(ctx, jti, expiresAt.UTC())
}

func (svc *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return svc.repo.IsTokenRevoked(ctx, jti)
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	appName := "Darasa"
	if svc.conf != nil {
		appName = svc.conf.AppName
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:       []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:  "Welcome to " + appName,
		BodyStr:  fmt.Sprintf("Hi %s,\n\nYour %s account is ready. You have signed up as a %s.\n", usr.Name, appName, usr.Role),
		Category: "welcome",
		Tags:     map[string]string{"user_id": strconv.Itoa(usr.ID), "role": usr.Role},
	})
}
