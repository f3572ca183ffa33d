// internal/handlers/handlers.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"safari-connect/internal/database"
	"safari-connect/internal/inventory"
	"safari-connect/internal/notify"
	"safari-connect/internal/repository"
	"safari-connect/internal/responder"
)

// ChatResponder answers chat messages. *responder.Responder and the
// file-backed *responder.Live both satisfy it.
type ChatResponder interface {
	Reply(ctx context.Context, text string) responder.Reply
	QuickReplies() []responder.QuickReply
	Rules() []responder.KeywordRule
}

type Handler struct {
	db               *database.DB
	bookingRepo      repository.BookingRepository
	notificationRepo repository.NotificationRepository
	responder        ChatResponder
	inventory        *inventory.Service
	relay            *notify.Relay
	indexPath        string
	now              func() time.Time
	streamInterval   time.Duration
	upgrader         websocket.Upgrader
}

func New(db *database.DB, resp ChatResponder, inv *inventory.Service, relay *notify.Relay, indexPath string) *Handler {
	return &Handler{
		db:               db,
		bookingRepo:      repository.NewBookingRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		responder:        resp,
		inventory:        inv,
		relay:            relay,
		indexPath:        indexPath,
		now:              time.Now,
		streamInterval:   defaultStreamInterval,
		upgrader: websocket.Upgrader{
			// The counter is public; any page may embed it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.indexPath)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
