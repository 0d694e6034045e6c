package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const claimsKey = "auth.claims"

// authenticate requires a valid bearer token and stores its claims on the
// context. No token is 401; a token that fails verification is 403.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Access denied. No token provided."})
		}

		claims, ok := s.deps.Tokens.Verify(token)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid token."})
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

// requireAdmin must run after authenticate.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Access denied. No token provided."})
		}
		if !claims.IsAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied. Admin only."})
		}
		return next(c)
	}
}

func claimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively; any other scheme yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogUserAgent: false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
			}
			if claims, ok := claimsFrom(c); ok {
				args = append(args, "user_id", claims.UserID)
			}
			s.logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
