package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Write([]byte("OK!"))
	}
}

// WelcomeHandler handles GET /main, the authenticated landing endpoint
func WelcomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to ProjectSync",
		})
	}
}
