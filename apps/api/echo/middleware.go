package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// roleMiddleware lets through callers whose token carries one of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func teacherMiddleware() echo.MiddlewareFunc { return roleMiddleware(user.RoleTeacher) }
func studentMiddleware() echo.MiddlewareFunc { return roleMiddleware(user.RoleStudent) }

// notRevokedMiddleware rejects tokens invalidated by a logout or a refresh.
// It must run after the JWT middleware.
func notRevokedMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			revoked, err := svc.IsTokenRevoked(ctx.Request().Context(), claims.Id)
			if err != nil {
				return errors.Wrap(err, "checking token revocation")
			}
			if revoked {
				return errTokenRevoked
			}
			return next(ctx)
		}
	}
}
