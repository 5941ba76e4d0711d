package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue("user-1", RoleManager)
	require.NoError(t, err)

	actor, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.True(t, actor.IsManager())
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }
	token, err := m.Issue("user-1", RoleEmployee)
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(time.Hour) }
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	a, _ := NewTokenManager("one", time.Hour)
	b, _ := NewTokenManager("two", time.Hour)
	token, err := a.Issue("user-1", RoleEmployee)
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONEnvelopeChiMiddleware(), m.Middleware)
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		cerr.SetJSONResponse(r.Context(), "ok", actor.UserID)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := m.Issue("user-9", RoleEmployee)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":"user-9"`)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "hunter2"))
	assert.Error(t, h.Compare(hash, "wrong"))
}
