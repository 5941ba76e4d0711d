package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

const opAuthentication = "Authentication Error"

// Middleware rejects requests without a valid bearer token and stores the
// actor on the request context. It relies on the cerr envelope middleware
// running first.
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			cerr.SetNewJSONError(r.Context(), opAuthentication, cerr.Unauthenticated, "login required", errors.New("missing bearer token"))
			return
		}
		actor, err := m.Parse(token)
		if err != nil {
			cerr.SetNewJSONError(r.Context(), opAuthentication, cerr.Unauthenticated, "token is invalid", err)
			return
		}
		clog.AddActor(r.Context(), actor.UserID, string(actor.Role))
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
