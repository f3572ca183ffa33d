// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"safari-connect/internal/models"
)

// GetInventory returns today's and tomorrow's counts. A read counts as the
// counter being on screen for the background decrement loop.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.inventory.MarkViewed(now)
	writeJSON(w, http.StatusOK, h.inventory.Snapshot(now))
}

func (h *Handler) TickInventory(w http.ResponseWriter, r *http.Request) {
	var req models.InventoryTickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid JSON data: "+err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()
	if req.Visible {
		h.inventory.MarkViewed(now)
	}
	count, decremented := h.inventory.Tick(now, req.Visible)
	writeJSON(w, http.StatusOK, models.InventoryTickResponse{Count: count, Decremented: decremented})
}

const defaultStreamInterval = 5 * time.Second

// StreamInventory pushes a snapshot over a websocket on connect and then every
// stream interval. An open stream counts as the counter being watched.
func (h *Handler) StreamInventory(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("inventory stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		now := h.now()
		h.inventory.MarkViewed(now)
		if err := conn.WriteJSON(h.inventory.Snapshot(now)); err != nil {
			slog.Debug("inventory stream closed", "error", err)
			return
		}

		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
