package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"github.com/justsurfingit/linkedin-agent/internal/services"
)

type lookupFunc func(ctx context.Context, token string) (*models.User, error)

func (f lookupFunc) ByToken(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Token abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, token, ok)
		}
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := lookupFunc(func(_ context.Context, token string) (*models.User, error) {
		switch token {
		case "good":
			return &models.User{ID: "good", Email: "a@b.c"}, nil
		case "broken":
			return nil, errors.New("db down")
		}
		return nil, services.ErrNotFound
	})

	r := gin.New()
	r.GET("/me", Middleware(users), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})

	tests := []struct {
		header string
		code   int
	}{
		{"Bearer good", http.StatusOK},
		{"Bearer unknown", http.StatusUnauthorized},
		{"Bearer broken", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.code {
			t.Errorf("%q: code = %d, want %d", tt.header, w.Code, tt.code)
		}
		if tt.code == http.StatusOK && w.Body.String() != "a@b.c" {
			t.Errorf("body = %q", w.Body.String())
		}
	}
}
