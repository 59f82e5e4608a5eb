package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "chat-capture/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// ControlPrefix is the path under which the proxy serves its own API.
// Everything else is forwarded to the host.
const ControlPrefix = "/_capture"

// NewRouter builds the control API router.
func NewRouter(capture *CaptureHandler, account *AccountHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route(ControlPrefix, func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		// Serves the generated Swagger UI for the control API.
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- DOM observations ---
			r.Post("/dom/navigation", capture.HandleNavigation)
			r.Post("/dom/title", capture.HandleTitle)
			r.Post("/dom/messages", capture.HandleMessages)

			// --- Pipeline ---
			r.Get("/status", capture.GetStatus)
			r.Get("/chats", capture.GetChats)
			r.Post("/flush", capture.HandleFlush)

			// --- Account ---
			r.Get("/account/stats", account.GetUserStats)
			r.Put("/account/metadata", account.UpdateUserMetadata)
			r.Get("/notifications", account.GetNotifications)
			r.Post("/notifications/{notificationID}/read", account.MarkNotificationRead)
			r.Post("/templates/{templateID}/use", account.TrackTemplateUsage)
		})

		// The event stream holds its connection open, so it gets no timeout.
		r.Get("/events", capture.HandleEvents)
	})

	return r
}
