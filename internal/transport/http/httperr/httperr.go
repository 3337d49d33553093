// Package httperr is the one place domain errors become HTTP statuses and
// client messages. Handlers and middleware both answer through it.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	msgInternalServer     = "Internal server error"
	msgEmailTaken         = "Email is already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgNotVerified        = "Your account is not verified. Check your email."
	msgTokenRequired      = "Token required"
	msgTokenInvalid       = "Token is invalid or expired"
	msgAutoNotFound       = "Auto not found"
	msgInvalidAutoStatus  = "Invalid auto status"
)

// Status maps a domain error to its HTTP status and client message.
// Anything unrecognised is a 500 whose detail stays in the log.
func Status(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, msgEmailTaken
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrAccountNotVerified):
		return http.StatusForbidden, msgNotVerified
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusBadRequest, msgTokenInvalid
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, msgTokenRequired
	case errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, msgTokenInvalid
	case errors.Is(err, domain.ErrAutoNotFound):
		return http.StatusNotFound, msgAutoNotFound
	case errors.Is(err, domain.ErrInvalidAutoStatus):
		return http.StatusBadRequest, msgInvalidAutoStatus
	default:
		return http.StatusInternalServerError, msgInternalServer
	}
}

// Write answers with {ok:false, message}. 500s are logged under op.
func Write(c *gin.Context, logger *slog.Logger, op string, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), op, "error", err)
	}
	c.JSON(status, gin.H{"ok": false, "message": msg})
}

// Abort is Write for middleware: it stops the chain and never logs.
func Abort(c *gin.Context, err error) {
	status, msg := Status(err)
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "message": msg})
}
