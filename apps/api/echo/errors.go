package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/submission"
	"github.com/trezcool/darasa/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidCredentials = echo.NewHTTPError(http.StatusBadRequest, user.ErrInvalidCredentials.Error())
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errTokenRevoked       = echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
	errLogoutFailed       = echo.NewHTTPError(http.StatusInternalServerError, "Failed to log out, please try again")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domain errors that map to a plain HTTP error
var domainHTTPErrors = []struct {
	err  error
	herr *echo.HTTPError
}{
	{user.ErrNotFound, errHttpNotFound},
	{user.ErrInvalidCredentials, errInvalidCredentials},
	{course.ErrNotFound, errHttpNotFound},
	{assignment.ErrNotFound, errHttpNotFound},
	{submission.ErrNotFound, errHttpNotFound},
}

func toHTTPError(cause error) error {
	for _, de := range domainHTTPErrors {
		if cause == de.err {
			return de.herr
		}
	}
	return cause
}

// validationResponse is the body of every 422 response.
type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func newValidationResponse(vErr core.ValidationError) validationResponse {
	return validationResponse{Message: vErr.Error(), Errors: vErr.FieldMessages()}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := toHTTPError(errors.Cause(err)).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusUnprocessableEntity
			message = newValidationResponse(*core.TranslateValidationErrors(origErr, translator))
		case *core.ValidationError:
			code = http.StatusUnprocessableEntity
			message = newValidationResponse(*origErr)
		case *submission.PersistenceError:
			if errors.Cause(origErr.Err) == submission.ErrAssignmentNotFound {
				// the assignment vanished between validation and insert
				code = http.StatusUnprocessableEntity
				message = newValidationResponse(core.ValidationError{
					Err:    core.ErrInvalidData,
					Fields: []core.FieldError{{Field: "submissions.*.assignment_id", Error: "The selected assignment does not exist."}},
				})
				break
			}
			code, message = serverError(ctx, logger, err, signalShutdown)
		default: // any other error is a server error
			code, message = serverError(ctx, logger, err, signalShutdown)
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("sending error response", err)
			}
		}
	}
}

func serverError(ctx echo.Context, logger core.Logger, err error, signalShutdown func()) (int, string) {
	msg := http.StatusText(http.StatusInternalServerError)

	var usr user.User
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		usr.ID = claims.UserID()
		usr.Email = claims.Email
		usr.Role = claims.Role
	}
	logger.Error(msg, errors.Wrap(err, msg), ctx.Request(), map[string]interface{}{"path": ctx.Path()}, usr)

	// shutting down...
	if core.IsShutdown(err) {
		signalShutdown()
	}

	if ctx.Echo().Debug {
		msg = err.Error()
	}
	return http.StatusInternalServerError, msg
}
