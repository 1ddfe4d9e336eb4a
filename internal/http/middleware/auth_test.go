package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(parse TokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(Auth(parse))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, PartnerIDFrom(c))
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	r := authRouter(func(token string) (string, error) {
		if token != "good-token" {
			return "", errors.New("bad token")
		}
		return "p-1", nil
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "p-1" {
		t.Fatalf("bound partner = %q, want p-1", w.Body.String())
	}
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	r := authRouter(func(string) (string, error) { return "p-1", nil })

	for _, header := range []string{"", "good-token", "Basic abc", "Bearer"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body["code"] != "unauthorized" {
			t.Fatalf("body = %v", body)
		}
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	r := authRouter(func(string) (string, error) {
		return "", errors.New("expired")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuth_BearerIsCaseInsensitive(t *testing.T) {
	r := authRouter(func(token string) (string, error) { return "p-2", nil })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer some-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "p-2" {
		t.Fatalf("lowercase scheme rejected: %d %q", w.Code, w.Body.String())
	}
}

func TestPartnerIDFrom_Unbound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := PartnerIDFrom(c); got != "" {
		t.Fatalf("PartnerIDFrom on unbound context = %q, want empty", got)
	}
}
