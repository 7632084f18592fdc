package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (*BasicAuthenticator, *models.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: hash}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}
	return NewBasicAuthenticator(service.NewUserService(db), "test-secret"), user
}

func TestLogin(t *testing.T) {
	a, user := setupAuth(t)

	resp, err := a.Login(t.Context(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.ID != user.ID {
		t.Errorf("unexpected response %+v", resp)
	}

	claims, err := a.validateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Issuer != Issuer {
		t.Errorf("unexpected claims %+v", claims)
	}

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong"},
		{"bob", "s3cret"},
	} {
		if _, err := a.Login(t.Context(), tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) error = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
		}
	}
}

func TestExpiredToken(t *testing.T) {
	a, user := setupAuth(t)
	a.now = func() time.Time { return time.Now().Add(-2 * TokenDuration) }
	token, err := a.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	a.now = time.Now
	if _, err := a.validateToken(token); err == nil {
		t.Error("expected an expired token to be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, user := setupAuth(t)
	token, err := a.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	router.GET("/required", a.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	router.GET("/optional", a.OptionalMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"required with token", "/required", "Bearer " + token, http.StatusOK, "alice"},
		{"required without token", "/required", "", http.StatusUnauthorized, ""},
		{"required malformed header", "/required", "Token " + token, http.StatusUnauthorized, ""},
		{"required bad token", "/required", "Bearer nope", http.StatusUnauthorized, ""},
		{"optional with token", "/optional", "Bearer " + token, http.StatusOK, "alice"},
		{"optional anonymous", "/optional", "", http.StatusOK, "Anonymous"},
		{"optional bad token", "/optional", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
