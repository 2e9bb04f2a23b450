package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/pkg/ctxutil"
)

// Session resolves the browser session from its cookie and stores the ID in
// the context. A missing or malformed cookie starts a new session. The
// cookie carries neither Expires nor Max-Age, so it lives exactly as long as
// the browser session. Preflight requests are passed through untouched.
func Session(cfg config.SessionConfig, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := sessionFromCookie(r, cfg.CookieName)
			if !ok {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id.String(),
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.DebugContext(r.Context(), "session started",
					slog.String("session_id", id.String()),
					slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
				)
			}

			next.ServeHTTP(w, r.WithContext(ctxutil.WithSessionID(r.Context(), id)))
		})
	}
}

func sessionFromCookie(r *http.Request, name string) (uuid.UUID, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
