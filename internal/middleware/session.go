package middleware

import (
	"context"
	"net/http"

	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/service"
)

// SessionHeader carries the dashboard session id in both directions.
const SessionHeader = "X-Session-ID"

// SessionKey is the context key for the dashboard session.
const SessionKey contextKey = "session"

// NewSessionMiddleware attaches the caller's dashboard session to the request,
// issuing a new id when the header is missing or malformed.
func NewSessionMiddleware(manager *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, created := manager.Acquire(r.Header.Get(SessionHeader))
			if created {
				logger.Log.Debugw("[Session] created", "session_id", sess.ID,
					"request_id", GetRequestID(r.Context()))
			}

			w.Header().Set(SessionHeader, sess.ID)

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the dashboard session from context.
func GetSession(ctx context.Context) *service.Session {
	if sess, ok := ctx.Value(SessionKey).(*service.Session); ok {
		return sess
	}
	return nil
}
