package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the caller's identity. Identity is an external
// collaborator: the messaging core trusts whatever participant id the token
// verifies to and never authenticates beyond that. In development without a
// Firebase project, the X-User-ID header stands in for a verified token.
type AuthMiddleware struct {
	authClient  *auth.Client
	environment string
}

func NewAuthMiddleware(authClient *auth.Client, environment string) *AuthMiddleware {
	return &AuthMiddleware{
		authClient:  authClient,
		environment: environment,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.authClient == nil {
			if m.environment != "development" {
				return echo.NewHTTPError(http.StatusInternalServerError, "Authentication is not configured")
			}
			uid := c.Request().Header.Get("X-User-ID")
			if uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "X-User-ID header is required in development mode")
			}
			c.Set("uid", uid)
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		token, err := m.authClient.VerifyIDToken(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", token.UID)
		return next(c)
	}
}

// GetUIDFromToken verifies a raw token, used by the websocket handshake
// where the token arrives as a query parameter.
func (m *AuthMiddleware) GetUIDFromToken(ctx context.Context, token string) (string, error) {
	if m.authClient == nil {
		if m.environment == "development" {
			return token, nil
		}
		return "", fmt.Errorf("authentication is not configured")
	}
	firebaseToken, err := m.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}
	return firebaseToken.UID, nil
}
