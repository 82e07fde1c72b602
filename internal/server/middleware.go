package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	HeaderTenant = "X-Tenant-ID"
	HeaderUser   = "X-User-ID"
)

type ctxKey int

const tenantKey ctxKey = iota

func withTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey, id)
}

func tenantFrom(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

// actorFrom returns the acting user recorded on decisions.
func actorFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUser))
}

// withTenant resolves the tenant from the X-Tenant-ID header (or the tenant
// query parameter) and rejects requests for tenants that do not exist.
func (s *Server) withTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderTenant))
		if id == "" {
			id = r.URL.Query().Get("tenant")
		}
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing "+HeaderTenant+" header")
			return
		}
		if _, err := s.store.GetTenant(r.Context(), id); err != nil {
			writeError(w, mapError(err), err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withTenantID(r.Context(), id)))
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("tenant", r.Header.Get(HeaderTenant)),
			}
			switch {
			case status >= http.StatusInternalServerError:
				log.Error("http request", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("http request", fields...)
			default:
				log.Info("http request", fields...)
			}
		})
	}
}
