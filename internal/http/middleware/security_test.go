package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// secRouter mounts SecurityHeaders behind an optional pre-middleware on a
// representative authenticated route.
func secRouter(opts SecurityOptions, pre gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opts))
	r.GET("/earnings/today", func(c *gin.Context) { c.String(http.StatusOK, "{}") })
	return r
}

func getEarnings(r *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/earnings/today", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Baseline_And_ExposeHeader(t *testing.T) {
	t.Run("baseline headers, X-Request-ID exposed", func(t *testing.T) {
		r := secRouter(SecurityOptions{
			EnableHSTS:   false,
			HSTSMaxAge:   0, // default max-age branch, unused while HSTS is off
			NoStore:      false,
			EnablePolicy: false,
		}, func(c *gin.Context) {
			// Stand-in for the RequestID middleware.
			c.Header("X-Request-ID", "rid-earn-1")
			c.Next()
		})

		w := getEarnings(r, nil)
		h := w.Header()
		if h.Get("X-Content-Type-Options") != "nosniff" ||
			h.Get("X-Frame-Options") != "DENY" ||
			h.Get("Referrer-Policy") != "no-referrer" {
			t.Fatalf("baseline headers missing: %#v", h)
		}
		if h.Get("Permissions-Policy") != "" || h.Get("X-Permitted-Cross-Domain-Policies") != "" {
			t.Fatalf("policy headers set while disabled: %#v", h)
		}
		if h.Get("Cache-Control") != "" || h.Get("Pragma") != "" || h.Get("Expires") != "" {
			t.Fatalf("cache headers set while disabled: %#v", h)
		}
		if h.Get("Strict-Transport-Security") != "" {
			t.Fatalf("HSTS set while disabled: %#v", h)
		}
		if h.Get("Access-Control-Expose-Headers") != "X-Request-ID" {
			t.Fatalf("expected Access-Control-Expose-Headers=X-Request-ID, got %q",
				h.Get("Access-Control-Expose-Headers"))
		}
	})

	t.Run("append X-Request-ID to an existing expose header", func(t *testing.T) {
		r := secRouter(SecurityOptions{}, func(c *gin.Context) {
			c.Header("X-Request-ID", "rid-earn-2")
			c.Header("Access-Control-Expose-Headers", "Content-Length")
			c.Next()
		})

		if got := getEarnings(r, nil).Header().Get("Access-Control-Expose-Headers"); got != "Content-Length, X-Request-ID" {
			t.Fatalf("expected 'Content-Length, X-Request-ID', got %q", got)
		}
	})

	t.Run("do not duplicate X-Request-ID", func(t *testing.T) {
		r := secRouter(SecurityOptions{}, func(c *gin.Context) {
			c.Header("X-Request-ID", "rid-earn-3")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Length")
			c.Next()
		})

		if got := getEarnings(r, nil).Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Content-Length" {
			t.Fatalf("expected unchanged expose header, got %q", got)
		}
	})
}

func TestSecurityHeaders_WithPolicy_NoStore_HSTS_TLS(t *testing.T) {
	r := secRouter(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour, // 86400
		NoStore:      true,
		EnablePolicy: true,
	}, nil)

	w := getEarnings(r, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{} // HTTPS via TLS
	})

	h := w.Header()
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	wantHSTS := "max-age=86400; includeSubDomains; preload"
	if h.Get("Strict-Transport-Security") != wantHSTS {
		t.Fatalf("HSTS = %q, want %q", h.Get("Strict-Transport-Security"), wantHSTS)
	}
}

func TestSecurityHeaders_HSTS_XForwardedProto(t *testing.T) {
	r := secRouter(SecurityOptions{
		EnableHSTS: true,
		HSTSMaxAge: time.Hour,
	}, nil)

	w := getEarnings(r, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https") // HTTPS via proxy header
	})

	if got := w.Header().Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=") {
		t.Fatalf("expected HSTS header, got %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain HTTP should not be https")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.TLS = &tls.ConnectionState{}
	if !isHTTPS(req2) {
		t.Fatalf("TLS request should be https")
	}

	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(req3) {
		t.Fatalf("X-Forwarded-Proto=https should be https")
	}
}

func Test_itoa_MatchesStrconv(t *testing.T) {
	for _, v := range []int{0, 1, 9, 10, 42, 86400, 1234567890, -1, -42} {
		if itoa(v) != strconv.Itoa(v) {
			t.Fatalf("itoa(%d) = %q, want %q", v, itoa(v), strconv.Itoa(v))
		}
	}
}
