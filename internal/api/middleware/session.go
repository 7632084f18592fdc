package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/messenger"
)

const (
	// SessionCookie identifies anonymous visitors across requests.
	SessionCookie = "attributes_session"
	// RecipientContextKey holds the messenger recipient of the request.
	RecipientContextKey = "recipient"

	sessionMaxAge = 30 * 24 * 60 * 60
)

// Recipient resolves where status messages of the request are queued.
// Authenticated accounts use their user key; anonymous visitors get a
// session cookie. Must run after the authentication middleware.
func Recipient() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !user.IsAnonymous() {
			c.Set(RecipientContextKey, messenger.UserRecipient(user.ID))
			c.Next()
			return
		}

		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set(RecipientContextKey, messenger.SessionRecipient(sessionID))
		c.Next()
	}
}

// GetRecipient returns the recipient stored by Recipient.
func GetRecipient(c *gin.Context) string {
	return c.GetString(RecipientContextKey)
}
