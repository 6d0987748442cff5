package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, Options{}, nil)
	r.GET("/secure", h.authMiddleware, func(c *gin.Context) {
		uid, _ := c.Get("userId")
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": uid})
	})
	r.GET("/admin", h.authMiddleware, h.adminMiddleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthMiddleware_Errors(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		parseErr error
		wantMsg  string
	}{
		{name: "missing token", wantMsg: "missing access token"},
		{name: "invalid scheme", header: "Token abc", wantMsg: "invalid Authorization header format"},
		{name: "bearer without token", header: "Bearer", wantMsg: "invalid Authorization header format"},
		{name: "expired token", header: "Bearer expired", parseErr: errors.New("token is expired"), wantMsg: "invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&service.Service{Authorization: &mockAuth{parseErr: tc.parseErr}})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", w.Code)
			}
			var out ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if out.Message != tc.wantMsg || out.StatusCode != http.StatusUnauthorized || out.Path != "/secure" {
				t.Fatalf("unexpected body: %+v", out)
			}
			if out.Timestamp == "" {
				t.Fatal("timestamp must be set")
			}
		})
	}
}

func TestAuthMiddleware_BearerSetsUserID(t *testing.T) {
	auth := &mockAuth{parseClaims: &service.Claims{UserID: 7, Username: "op"}}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if int(m["userId"].(float64)) != 7 {
		t.Fatalf("expected userId 7, got %v", m["userId"])
	}
	if auth.lastParseToken != "good" {
		t.Fatalf("expected token 'good', got %q", auth.lastParseToken)
	}
}

func TestAuthMiddleware_CookieWinsOverHeader(t *testing.T) {
	auth := &mockAuth{}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if auth.lastParseToken != "from-cookie" {
		t.Fatalf("expected cookie token, got %q", auth.lastParseToken)
	}
}

func TestAdminMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		claims *service.Claims
		want   int
	}{
		{"operator", &service.Claims{UserID: 3}, http.StatusForbidden},
		{"admin", &service.Claims{UserID: 1, Admin: true}, http.StatusOK},
		{"super admin", &service.Claims{UserID: 1, SuperAdmin: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&service.Service{Authorization: &mockAuth{parseClaims: tc.claims}})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer t")
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
		})
	}
}

func TestHealthAndRecovery(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}

	h := NewHandler(&service.Service{}, nil, Options{}, nil)
	engine := h.InitRoutes()
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
}

func TestMetricsRouteOnlyWhenConfigured(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", w.Code)
	}

	h := NewHandler(&service.Service{}, nil, Options{
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("thermal_up 1\n")) }),
	}, nil)
	w = httptest.NewRecorder()
	h.InitRoutes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || w.Body.String() != "thermal_up 1\n" {
		t.Fatalf("metrics: %d %q", w.Code, w.Body.String())
	}
}
