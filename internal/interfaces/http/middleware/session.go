package middleware

import (
	"net/http"

	appidentity "github.com/catalogdash/backend/internal/application/identity"
	"github.com/catalogdash/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireSession rejects requests while the session store is not
// authenticated. Catalog mutations sit behind this guard.
func RequireSession(auth *appidentity.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeSessionExpired, "No active session"))
			return
		}
		c.Next()
	}
}
