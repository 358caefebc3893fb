package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func rbacContext(id *Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/admin/users/x", nil)
	if id != nil {
		req = req.WithContext(WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRBAC_AllowsListedRole(t *testing.T) {
	c, rec := rbacContext(&Identity{UserID: "u1", Role: "admin"})

	called := false
	handler := RBAC("admin")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_FallsBackToContextValues(t *testing.T) {
	c, rec := rbacContext(nil)
	c.Set("user_id", "u1")
	c.Set("role", "admin")

	handler := RBAC("admin")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	_ = handler(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Rejects(t *testing.T) {
	tests := []struct {
		name string
		id   *Identity
		code int
	}{
		{"wrong role", &Identity{UserID: "u1", Role: "user"}, http.StatusForbidden},
		{"no role", &Identity{UserID: "u1"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := rbacContext(tt.id)
			handler := RBAC("admin")(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			_ = handler(c)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}
