package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestInfo is filled in by RequireAuth once the bearer token is verified,
// so the access log can attribute requests to a reporter or admin.
type requestInfo struct {
	userID string
	role   string
}

type requestInfoKey struct{}

func noteUser(ctx context.Context, userID, role string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.userID = userID
		info.role = role
	}
}

// RequestLogger returns middleware that logs each HTTP request with method,
// path, status code, duration, remote IP, and the authenticated user when
// a later middleware identified one.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			info := &requestInfo{}
			ctx := context.WithValue(r.Context(), requestInfoKey{}, info)

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", duration),
				slog.String("remote", RealIP(r)),
			}
			if info.userID != "" {
				attrs = append(attrs,
					slog.String("user", info.userID),
					slog.String("role", info.role),
				)
			}

			switch {
			case rec.status >= 500:
				logger.LogAttrs(r.Context(), slog.LevelError, "request", attrs...)
			case rec.status >= 400:
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request", attrs...)
			default:
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
			}
		})
	}
}
