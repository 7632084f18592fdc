package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/models"
)

func recipientRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(auth.UserContextKey, user)
		}
		c.Next()
	})
	r.Use(Recipient())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRecipient(c))
	})
	return r
}

func TestRecipientAuthenticated(t *testing.T) {
	r := recipientRouter(&models.User{ID: 7, Username: "alice"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Body.String() != "user:7" {
		t.Errorf("recipient = %q, want user:7", w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); cookie != "" {
		t.Errorf("authenticated request got a session cookie: %q", cookie)
	}
}

func TestRecipientAnonymousSession(t *testing.T) {
	r := recipientRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
	session := cookies[0].Value
	if w.Body.String() != "session:"+session {
		t.Errorf("recipient = %q, want session:%s", w.Body.String(), session)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	// The same visitor keeps its session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "session:"+session {
		t.Errorf("recipient = %q, want the existing session", w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); cookie != "" {
		t.Errorf("existing session was reissued: %q", cookie)
	}
}

func TestRecipientRejectsForgedSession(t *testing.T) {
	r := recipientRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "user:1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), "user:1") {
		t.Errorf("forged session id accepted: %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "session:") {
		t.Errorf("recipient = %q, want a fresh session", w.Body.String())
	}
}
