package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint/pkg/utils"
)

const (
	terminalIDKey = "terminal_id"
	cashierKey    = "cashier"
)

// AuthMiddleware validates the terminal bearer token and records the
// terminal on the context
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(terminalIDKey, claims.TerminalID)
		c.Set(cashierKey, claims.Cashier)

		c.Next()
	}
}

// RequireTerminal rejects requests whose :terminal path segment is not the
// terminal the token was issued to
func RequireTerminal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("terminal") != GetTerminalID(c) {
			response.Forbidden(c, "Token is not valid for this terminal")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTerminalID returns the authenticated terminal, or "" outside auth
func GetTerminalID(c *gin.Context) string {
	return c.GetString(terminalIDKey)
}

func GetCashier(c *gin.Context) string {
	return c.GetString(cashierKey)
}
