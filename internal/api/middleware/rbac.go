package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/access"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/rbac"
)

// RequirePermission ensures the current account holds permission. The
// anonymous account is checked like any other, through its implicit role.
func RequirePermission(checker *access.Handler, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		ok, err := checker.HasPermission(user, permission)
		if err != nil {
			slog.Error("Permission check failed", "permission", permission, "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAttributeTypeAdmin ensures the account may manage attribute types.
func RequireAttributeTypeAdmin(checker *access.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.AttributeTypeAccess(auth.CurrentUser(c))
		if err != nil || !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin ensures the user holds the administrator role.
func RequireAdmin(checker *access.Handler) gin.HandlerFunc {
	return RequirePermission(checker, rbac.AllPermissions)
}
