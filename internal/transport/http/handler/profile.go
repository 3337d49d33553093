package handler

import (
	"net/http"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/httperr"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// GET /profile/me
// Answers from the session claims alone; the account row is not read.
func Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		httperr.Abort(c, domain.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": claims})
}
