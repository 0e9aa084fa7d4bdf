// internal/membership/router.go
package membership

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter registers the member routes behind the common middleware stack.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/plans/{plan}/price", h.handlePlanPrice)

	r.Route("/members", func(r chi.Router) {
		r.Get("/", h.handleListMembers)
		r.Post("/regular", h.handleCreateRegular)
		r.Post("/premium", h.handleCreatePremium)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetMember)
			r.Post("/activate", h.memberAction(h.handleActivate))
			r.Post("/deactivate", h.memberAction(h.handleDeactivate))
			r.Post("/attendance", h.memberAction(h.handleAttendance))

			r.Post("/upgrade", h.handleUpgrade)
			r.Post("/revert-regular", h.handleRevertRegular)

			r.Post("/payments", h.handlePayment)
			r.Post("/discount", h.memberAction(h.handleDiscount))
			r.Post("/revert-premium", h.memberAction(h.handleRevertPremium))
		})
	})

	r.Post("/snapshots", h.handleSaveSnapshot)
	r.Post("/snapshots/load", h.handleLoadSnapshot)

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
