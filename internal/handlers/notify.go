// internal/handlers/notify.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"safari-connect/internal/models"
)

// Notify is the cross-origin notification relay. Failures of any kind are
// reported as 500 with success=false.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req models.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NotificationResponse{Error: "invalid request body"})
		return
	}
	req.RentalDetails.Normalize()

	orderID, err := h.relay.Send(r.Context(), req)
	if err != nil {
		slog.Warn("relay request failed", "type", req.NotificationType, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NotificationResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.NotificationResponse{Success: true, OrderID: orderID})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "error": err.Error()})
		return
	}
	version, err := h.db.SchemaVersion()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "schemaVersion": version})
}
