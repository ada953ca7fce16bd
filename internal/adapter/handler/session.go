package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/adapter/dto/report"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-reporter/pkg/jwt"
)

// Session issues session tokens
type Session struct {
	tokens       *jwt.Manager
	secureCookie bool
	logger       *zap.Logger
}

// NewSessionHandler creates a new session handler. secureCookie should be
// true whenever the API is served over HTTPS.
func NewSessionHandler(tokens *jwt.Manager, secureCookie bool, logger *zap.Logger) *Session {
	return &Session{
		tokens:       tokens,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Create handles POST /sessions
// @Summary      Start a session
// @Description  Issues a session token, also set as the session_token cookie
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  report.SessionResponse
// @Router       /sessions [post]
func (h *Session) Create(c echo.Context) error {
	sessionID, token, expiresAt, err := h.tokens.NewSession()
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if h.logger != nil {
		h.logger.Info("🔑 Session started", zap.String("session_id", sessionID))
	}

	return HandleSuccessStatus(h.logger, c, http.StatusCreated, report.SessionResponse{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
