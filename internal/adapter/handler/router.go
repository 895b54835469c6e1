package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/adapter/ws"
	"github.com/satrio28/hallbook/internal/core/ports"
	"github.com/satrio28/hallbook/internal/core/services"
)

// NewRouter wires HTTP routes to core services. The websocket endpoint sits
// outside the bearer-header middleware because browsers cannot set headers
// on websocket dials; the ws handler authenticates on its own.
func NewRouter(bookingSvc *services.BookingService, wsHandler *ws.Handler, verifier ports.TokenVerifier, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	bookingHandler := NewBookingHandler(bookingSvc)

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(authed chi.Router) {
			authed.Use(Authenticate(verifier))
			bookingHandler.RegisterRoutes(authed)
		})
	})

	r.Get("/ws", wsHandler.Handle)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "up"})
	})

	return r
}
