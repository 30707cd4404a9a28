package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/science-tutor/internal/auth"
)

type staticSessions map[string]string

func (s staticSessions) Create(context.Context, string) (string, error) { return "", nil }
func (s staticSessions) Get(_ context.Context, sid string) (string, error) {
	return s[sid], nil
}
func (s staticSessions) Delete(context.Context, string) error { return nil }

func TestRequireAuth(t *testing.T) {
	var seen string
	h := RequireAuth(staticSessions{"good": "user-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		cookie string
		status int
		user   string
	}{
		{name: "no cookie", status: http.StatusUnauthorized},
		{name: "unknown session", cookie: "stale", status: http.StatusUnauthorized},
		{name: "valid session", cookie: "good", status: http.StatusNoContent, user: "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, seen)
		})
	}
}
