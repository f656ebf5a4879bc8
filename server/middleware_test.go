package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	models "receipt-verifier/models"

	"go.uber.org/zap"
)

type fakeKeyStore struct {
	keys map[string]*models.ApiKeyPrincipal
	err  error
}

func (f *fakeKeyStore) FindActive(_ context.Context, key string) (*models.ApiKeyPrincipal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keys[key], nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	lastID  string
}

func (f *fakeLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	f.lastID = clientID
	return f.allowed, f.err
}

func passthrough(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		name := principalName(r.Context())
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, name)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	store := &fakeKeyStore{keys: map[string]*models.ApiKeyPrincipal{
		"k-valid": {ID: "p-1", Name: "till-1"},
	}}
	mw := APIKeyAuth(store, zap.NewNop())

	t.Run("missing key", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()
		mw(passthrough(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized || called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "k-bogus")
		rec := httptest.NewRecorder()
		mw(passthrough(&called)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized || called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("valid key carries principal", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "k-valid")
		rec := httptest.NewRecorder()
		mw(passthrough(&called)).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
		if rec.Body.String() != "till-1" {
			t.Errorf("principal name = %q", rec.Body.String())
		}
	})

	t.Run("store failure is a server fault", func(t *testing.T) {
		broken := APIKeyAuth(&fakeKeyStore{err: fmt.Errorf("connection reset")}, zap.NewNop())
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "k-valid")
		rec := httptest.NewRecorder()
		broken(passthrough(&called)).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError || called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed passes through", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true}
		called := false
		rec := httptest.NewRecorder()
		RateLimit(limiter, zap.NewNop())(passthrough(&called)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("blocked returns 429", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: false}
		called := false
		rec := httptest.NewRecorder()
		RateLimit(limiter, zap.NewNop())(passthrough(&called)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusTooManyRequests || called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("backend failure fails open", func(t *testing.T) {
		limiter := &fakeLimiter{err: fmt.Errorf("redis down")}
		called := false
		rec := httptest.NewRecorder()
		RateLimit(limiter, zap.NewNop())(passthrough(&called)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("code = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("keys the window by the principal", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true}
		called := false
		principal := &models.ApiKeyPrincipal{ID: "p-9", Name: "till-9"}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), principalKey, principal))
		RateLimit(limiter, zap.NewNop())(passthrough(&called)).
			ServeHTTP(httptest.NewRecorder(), req)
		if limiter.lastID != "p-9" {
			t.Errorf("window key = %q", limiter.lastID)
		}
	})
}
