package middleware

import (
	"net/http"
	"strings"

	"interiors-admin-be/config"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid access token and stores the admin id and e-mail
// in the context as "userID" and "email".
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing bearer token",
			})
			return
		}

		claims, err := utils.ValidateToken(strings.TrimSpace(token), cfg.JWTSecret, utils.TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set("userID", claims.AdminID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
