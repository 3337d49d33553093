package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errInvalidBody = "Invalid request body"

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msg})
}
