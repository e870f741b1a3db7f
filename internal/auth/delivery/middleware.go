package delivery

import (
	"strings"

	"focusmeet-backend/internal/auth/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

func AuthMiddleware(verifier usecase.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperror.Respond(c, apperror.Unauthenticated("authorization header required"))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apperror.Respond(c, apperror.Unauthenticated("invalid authorization header format"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			apperror.Respond(c, apperror.Unauthenticated("invalid or expired token"))
			return
		}

		c.Set(ContextUserID, identity.UID)
		c.Set(ContextUserEmail, identity.Email)
		c.Next()
	}
}
