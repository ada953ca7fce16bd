package middleware

import (
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/errors"
	"github.com/johnquangdev/meeting-reporter/pkg/jwt"
	"github.com/johnquangdev/meeting-reporter/pkg/runcontext"
)

const (
	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "session_token"
	// SessionContextKey is the echo context key of the caller's session id
	SessionContextKey = "session_id"
)

// SessionMiddleware authenticates requests with session tokens
type SessionMiddleware struct {
	tokens *jwt.Manager
	logger *zap.Logger
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(tokens *jwt.Manager, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, logger: logger}
}

// Authenticate validates the session token and puts the session id on
// both the echo context and the request context
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ExtractToken(c)
		if token == "" {
			return respondError(c, errors.ErrUnauthenticated())
		}

		claims, err := m.tokens.ValidateSessionToken(token)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("⚠️ Rejected session token",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			if stdErrors.Is(err, jwt.ErrTokenExpired) {
				return respondError(c, errors.ErrTokenExpired())
			}
			return respondError(c, errors.ErrInvalidToken())
		}

		c.Set(SessionContextKey, claims.SessionID)
		req := c.Request()
		c.SetRequest(req.WithContext(runcontext.WithSessionID(req.Context(), claims.SessionID)))
		return next(c)
	}
}

// GetSessionID returns the authenticated session id, if any
func GetSessionID(c echo.Context) string {
	sid, _ := c.Get(SessionContextKey).(string)
	return sid
}

// ExtractToken reads the token from the Authorization header or the session cookie
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func respondError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
