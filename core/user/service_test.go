package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/inmem"
)

func newValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func fieldMessages(t *testing.T, err error, translator ut.Translator) map[string][]string {
	t.Helper()
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return core.TranslateValidationErrors(e, translator).FieldMessages()
	case *core.ValidationError:
		return e.FieldMessages()
	}
	t.Fatalf("not a validation error: %v", err)
	return nil
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := newValidator()
	svc := user.NewService(inmemdb.NewUserRepository(inmemdb.Open()), nil, nil)

	tests := []struct {
		name string
		nu   user.NewUser
		want map[string][]string
	}{
		{
			name: "valid",
			nu:   user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "Blue-Monday-42", PasswordConfirm: "Blue-Monday-42", Role: "STUDENT"},
		},
		{
			name: "bad email & mismatching confirmation",
			nu:   user.NewUser{Name: "Jane", Email: "jane", Password: "Blue-Monday-42", PasswordConfirm: "other", Role: "student"},
			want: map[string][]string{
				"email":                 {"email must be a valid email address"},
				"password_confirmation": {"password_confirmation must be equal to Password"},
			},
		},
		{
			name: "password too similar to name",
			nu:   user.NewUser{Name: "Janet Jackson", Email: "jj@test.cd", Password: "janetjackson", PasswordConfirm: "janetjackson", Role: "teacher"},
			want: map[string][]string{"password": {"password cannot be similar to user attributes"}},
		},
		{
			name: "password too similar to email",
			nu:   user.NewUser{Name: "X", Email: "superstudent@test.cd", Password: "superstudent1", PasswordConfirm: "superstudent1", Role: "teacher"},
			want: map[string][]string{"password": {"password cannot be similar to user attributes"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(context.Background(), validate, svc)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.Equal(t, user.RoleStudent, tt.nu.Role)
				return
			}
			assert.Equal(t, tt.want, fieldMessages(t, err, translator))
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	svc := user.NewService(repo, nil, nil)

	usr, err := svc.Create(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "Blue-Monday-42", Role: user.RoleTeacher})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.NotEqual(t, []byte("Blue-Monday-42"), usr.PasswordHash)

	t.Run("email uniqueness", func(t *testing.T) {
		validate, translator := newValidator()
		nu := user.NewUser{Name: "Other", Email: "JANE@test.cd", Password: "Blue-Monday-42", PasswordConfirm: "Blue-Monday-42", Role: "student"}
		err := nu.Validate(ctx, validate, svc)
		assert.Equal(t, map[string][]string{"email": {user.ErrEmailExists.Error()}}, fieldMessages(t, err, translator))
	})

	t.Run("authenticate", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@test.cd", "Blue-Monday-42")
		assert.Equal(t, user.ErrInvalidCredentials, err)
		_, err = svc.Authenticate(ctx, "jane@test.cd", "wrong")
		assert.Equal(t, user.ErrInvalidCredentials, err)

		got, err := svc.Authenticate(ctx, " Jane@Test.cd", "Blue-Monday-42")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		require.NotNil(t, got.LastLogin)
		assert.WithinDuration(t, time.Now(), *got.LastLogin, time.Minute)
	})

	t.Run("add user", func(t *testing.T) {
		updated, err := svc.AddUser(ctx, "Jane D.", "jane@test.cd", user.RoleStudent, "new-password")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, updated.ID)
		assert.Equal(t, "Jane D.", updated.Name)
		assert.Equal(t, user.RoleStudent, updated.Role)
		assert.NoError(t, updated.CheckPassword("new-password"))

		created, err := svc.AddUser(ctx, "", "new@test.cd", user.RoleTeacher, "pwd")
		require.NoError(t, err)
		assert.NotEqual(t, usr.ID, created.ID)
	})

	t.Run("reset password", func(t *testing.T) {
		assert.Equal(t, user.ErrNotFound, errors.Cause(svc.ResetPassword(ctx, "ghost@test.cd", "pwd")))
		require.NoError(t, svc.ResetPassword(ctx, "jane@test.cd", "another-one"))
		got, err := svc.GetByEmail(ctx, "jane@test.cd")
		require.NoError(t, err)
		assert.NoError(t, got.CheckPassword("another-one"))
	})

	t.Run("revoke token", func(t *testing.T) {
		assert.Error(t, svc.RevokeToken(ctx, "", time.Now().Add(time.Hour)))

		revoked, err := svc.IsTokenRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, svc.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
		revoked, err = svc.IsTokenRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
