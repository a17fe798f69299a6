package httpapi

import (
	"context"
	"net/http"
	"strings"

	"expenses/internal/server/auth"
	"expenses/internal/server/models"
	"expenses/internal/server/policy"
)

type ctxKey string

const callerKey ctxKey = "caller"

// authenticate validates the bearer token, builds the caller identity and
// applies the baseline policy gate before invoking next. The caller is made
// available to handlers through the request context.
func (s *Server) authenticate(next func(http.ResponseWriter, *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "A bearer access token is required.")
			return
		}

		caller, err := auth.ParseCaller(token, s.jwtSecret)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "The access token is invalid or expired.")
			return
		}

		if err := policy.Baseline(caller); err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next(w, r.WithContext(ctx))
	})
}

// callerFromContext returns the authenticated caller stored by the
// middleware. The zero value is returned for contexts that never went
// through authentication; the baseline policy rejects it.
func callerFromContext(ctx context.Context) models.Caller {
	caller, _ := ctx.Value(callerKey).(models.Caller)
	return caller
}
