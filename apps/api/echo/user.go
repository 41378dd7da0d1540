package echoapi

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type authApi struct {
	svc        *user.Service
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(g, authed *echo.Group, deps ServerDeps) {
	api := authApi{
		svc:        deps.UserSvc,
		conf:       deps.Conf,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)

	// authed endpoints
	authed.POST("/logout", api.logout)
	authed.POST("/token-refresh", api.refreshToken)
}

type (
	RegisterResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{User: usr, Token: token})
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.RevokeToken(ctx.Request().Context(), claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		api.logger.Error("revoking token", err, user.User{ID: claims.UserID(), Email: claims.Email})
		return errLogoutFailed
	}
	return sendMessage(ctx, "Successfully logged out")
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}
