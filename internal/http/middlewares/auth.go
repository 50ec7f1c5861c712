package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"task-manager.com/task-manager/internal/auth"
	apperrors "task-manager.com/task-manager/internal/errors"
)

const claimsKey = "auth.claims"

// RequireAuth resolves the bearer token to claims and stores them on the
// context. Every credential failure is the same 401.
func RequireAuth(verifier *auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Add(echo.HeaderVary, echo.HeaderAuthorization)

			claims, err := verifier.Authenticate(
				c.Request().Context(),
				c.Request().Header.Get(echo.HeaderAuthorization),
			)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) ||
					errors.Is(err, auth.ErrExpiredToken) ||
					errors.Is(err, auth.ErrRevokedToken) {
					return apperrors.ErrUnauthenticated
				}
				return err
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func Claims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

// OwnerID is the authenticated user's id, or "" outside RequireAuth.
func OwnerID(c echo.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID()
	}
	return ""
}
