package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticator is an interface for authentication providers
type Authenticator interface {
	// Login authenticates a user and returns a JWT token
	Login(ctx context.Context, username, password string) (*LoginResponse, error)

	// Middleware returns a Gin middleware that rejects requests without a
	// valid token.
	Middleware() gin.HandlerFunc

	// OptionalMiddleware authenticates the request when a token is present
	// and otherwise continues as the anonymous account.
	OptionalMiddleware() gin.HandlerFunc

	// GetUserFromContext extracts the authenticated user from the Gin context
	GetUserFromContext(c *gin.Context) (*models.User, error)
}

// CurrentUser returns the account stored on the context, or the anonymous
// account when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	if value, ok := c.Get(UserContextKey); ok {
		if user, ok := value.(*models.User); ok && user != nil {
			return user
		}
	}
	return models.AnonymousUser()
}
