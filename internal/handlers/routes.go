// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"safari-connect/internal/middleware"
)

type RouteConfig struct {
	CSRF           *middleware.CSRFTokenStore
	AllowedOrigins []string
	AdminSecret    []byte
	StaticDir      string
}

// Routes wires every endpoint. The relay and the admin API sit outside the
// CSRF subrouter: the relay is called cross-origin and admin calls carry a
// bearer token.
func (h *Handler) Routes(cfg RouteConfig) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/csrf-token", middleware.CSRFTokenHandler(cfg.CSRF)).Methods("GET")
	r.HandleFunc("/api/health", h.Health).Methods("GET")

	relay := middleware.RelayCORS(cfg.AllowedOrigins)(http.HandlerFunc(h.Notify))
	r.Handle("/api/notify", relay).Methods("POST", "OPTIONS")

	// The chat widget posts one message per turn without a token.
	r.HandleFunc("/api/chat", h.Chat).Methods("POST")

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.AdminSecret))
	admin.HandleFunc("/bookings", h.GetBookings).Methods("GET")
	admin.HandleFunc("/bookings/{orderId}", h.GetBooking).Methods("GET")
	admin.HandleFunc("/bookings/{orderId}", h.UpdateBookingStatus).Methods("PATCH")
	admin.HandleFunc("/bookings/{orderId}/notifications", h.GetBookingNotifications).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CSRFMiddleware(cfg.CSRF))

	api.HandleFunc("/chat/quick-replies", h.GetQuickReplies).Methods("GET")
	api.HandleFunc("/chat/categories", h.GetCategories).Methods("GET")
	api.HandleFunc("/chat/rules", h.GetChatRules).Methods("GET")
	api.HandleFunc("/inventory", h.GetInventory).Methods("GET")
	api.HandleFunc("/inventory/stream", h.StreamInventory).Methods("GET")
	api.HandleFunc("/inventory/tick", h.TickInventory).Methods("POST")
	api.HandleFunc("/bookings", h.CreateBooking).Methods("POST")

	if cfg.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}
	r.HandleFunc("/", h.IndexPage).Methods("GET")

	return r
}
