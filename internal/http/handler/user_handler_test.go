package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
	servicegomock "github.com/sandeepkv93/vibecraft-auth-service/internal/service/gomock"
)

func TestUserHandlerMe(t *testing.T) {
	t.Run("missing auth context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewUserHandler(servicegomock.NewMockAuthServiceInterface(ctrl), discardLogger())
		rr := httptest.NewRecorder()
		h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("invalid subject", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewUserHandler(servicegomock.NewMockAuthServiceInterface(ctrl), discardLogger())
		claims := &security.Claims{}
		claims.Subject = "abc"
		rr := httptest.NewRecorder()
		h.Me(rr, withClaims(httptest.NewRequest(http.MethodGet, "/api/me", nil), claims))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockAuthServiceInterface(ctrl)
		svc.EXPECT().Profile(gomock.Any(), uint(42)).Return(nil, service.ErrUserNotFound)
		h := NewUserHandler(svc, discardLogger())
		claims := &security.Claims{}
		claims.Subject = "42"
		rr := httptest.NewRecorder()
		h.Me(rr, withClaims(httptest.NewRequest(http.MethodGet, "/api/me", nil), claims))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockAuthServiceInterface(ctrl)
		svc.EXPECT().Profile(gomock.Any(), uint(7)).Return(&domain.UserProfile{ID: 7, Username: "driver"}, nil)
		h := NewUserHandler(svc, discardLogger())
		claims := &security.Claims{}
		claims.Subject = "7"
		rr := httptest.NewRecorder()
		h.Me(rr, withClaims(httptest.NewRequest(http.MethodGet, "/api/me", nil), claims))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		env := decodeEnvelope(t, rr)
		var profile domain.UserProfile
		if err := json.Unmarshal(env.Data, &profile); err != nil {
			t.Fatalf("decode profile: %v", err)
		}
		if profile.Username != "driver" {
			t.Fatalf("unexpected profile %+v", profile)
		}
	})
}

func TestUserHandlerList(t *testing.T) {
	t.Run("flat users payload without hashes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockAuthServiceInterface(ctrl)
		svc.EXPECT().ListUsers(gomock.Any()).Return([]domain.UserProfile{
			{ID: 1, Username: "admin", Role: "admin"},
			{ID: 2, Username: "driver", Role: "driver"},
		}, nil)
		h := NewUserHandler(svc, discardLogger())

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		var body struct {
			Success bool             `json:"success"`
			Users   []map[string]any `json:"users"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rr.Code != http.StatusOK || !body.Success || len(body.Users) != 2 {
			t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
		}
		for _, u := range body.Users {
			if _, ok := u["password_hash"]; ok {
				t.Fatal("password hash must not be listed")
			}
		}
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockAuthServiceInterface(ctrl)
		svc.EXPECT().ListUsers(gomock.Any()).Return(nil, nil)
		h := NewUserHandler(svc, discardLogger())

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		if got := rr.Body.String(); got != "{\"success\":true,\"users\":[]}\n" {
			t.Fatalf("unexpected body %q", got)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockAuthServiceInterface(ctrl)
		svc.EXPECT().ListUsers(gomock.Any()).Return(nil, &service.Error{Kind: service.KindStorage, Code: "INTERNAL", Err: errors.New("boom")})
		h := NewUserHandler(svc, discardLogger())

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
	})
}
