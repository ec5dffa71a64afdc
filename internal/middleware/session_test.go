package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/ideaswipe/internal/model"
	"github.com/hitoshi/ideaswipe/internal/repository"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware(t *testing.T) {
	ctx := context.Background()
	sessionRepo := repository.NewMemorySessionRepo()
	session := &model.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	if err := sessionRepo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var gotUserID string
	handler := NewSessionMiddleware(sessionRepo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("user ID in context = %q, want user-1", gotUserID)
	}
}

func TestSessionMiddleware_Unauthorized(t *testing.T) {
	ctx := context.Background()
	sessionRepo := repository.NewMemorySessionRepo()
	expired := &model.Session{ID: "expired", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := sessionRepo.Create(ctx, expired); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	handler := NewSessionMiddleware(sessionRepo)(okHandler(t))

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty session ID", &http.Cookie{Name: SessionCookieName, Value: ""}},
		{"unknown session", &http.Cookie{Name: SessionCookieName, Value: "nope"}},
		{"expired session", &http.Cookie{Name: SessionCookieName, Value: "expired"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	ctx := context.Background()
	userRepo := repository.NewMemoryUserRepo()
	users := []*model.User{
		{ID: "admin-1", Name: "Super Admin", Email: "admin@ideaswipe.com", Role: model.RoleAdmin},
		{ID: "user-1", Name: "Alice", Email: "alice@example.com", Role: model.RoleUser},
	}
	for _, u := range users {
		if err := userRepo.Create(ctx, u); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	handler := NewAdminMiddleware(userRepo)(okHandler(t))

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{"admin allowed", "admin-1", http.StatusOK},
		{"regular user forbidden", "user-1", http.StatusForbidden},
		{"unknown user forbidden", "ghost", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req = req.WithContext(ContextWithUserID(req.Context(), tt.userID))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdminMiddleware_NoUserInContext(t *testing.T) {
	handler := NewAdminMiddleware(repository.NewMemoryUserRepo())(okHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
