package auth

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
)

// Middleware returns the authentication middleware for protected routes. It
// extracts the bearer token, verifies signature and expiry through the JWT
// service, and stores the decoded identity on the request context. A missing
// credential and an invalid one are rejected with distinct error codes.
func Middleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get("user").(*Claims); ok {
				SetIdentity(c, Identity{UserID: claims.UserID, Role: claims.Role})
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(classifyAuthError(c, err))
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// classifyAuthError separates "no credential presented" from "credential
// presented but rejected". The header is inspected directly so the
// distinction does not depend on the extractor's error shapes.
func classifyAuthError(c echo.Context, err error) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if header == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.ErrUnauthenticated
	}
	return apperrors.ErrInvalidToken
}

// RequireRoles returns middleware permitting only the listed roles. It must
// run after Middleware; if no identity is in context the request is rejected
// as forbidden rather than let through.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c)
			if !ok || !allowed[identity.Role] {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
				return echo.NewHTTPError(http.StatusForbidden, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
