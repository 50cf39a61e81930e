package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type staticValidator struct {
	token     string
	principal Principal
}

func (v staticValidator) Validate(ctx context.Context, token string) (Principal, error) {
	if token != v.token {
		return Principal{}, ErrUnauthorized
	}
	return v.principal, nil
}

func newMiddlewareRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(v))
	r.GET("/whoami", func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID})
	})
	return r
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	r := newMiddlewareRouter(staticValidator{token: "good", principal: Principal{UserID: "u1"}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != `{"user_id":"u1"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMiddlewareLetsAnonymousThrough(t *testing.T) {
	r := newMiddlewareRouter(staticValidator{token: "good", principal: Principal{UserID: "u1"}})

	for _, header := range []string{"", "Bearer bad-token", "Basic dXNlcg=="} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d", header, rr.Code)
		}
		if body := rr.Body.String(); body != `{"anonymous":true}` {
			t.Fatalf("header %q: unexpected body: %s", header, body)
		}
	}
}

func TestPrincipalRoles(t *testing.T) {
	if (Principal{}).Authenticated() {
		t.Fatalf("zero principal must be anonymous")
	}
	if (Principal{UserID: "u1", Roles: []string{"user"}}).IsAdmin() {
		t.Fatalf("user role must not grant admin")
	}
	if !(Principal{UserID: "u1", Roles: []string{"user", AdminRole}}).IsAdmin() {
		t.Fatalf("admin role not detected")
	}
}
