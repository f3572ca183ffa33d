// internal/handlers/bookings.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"safari-connect/internal/middleware"
	"safari-connect/internal/models"
	"safari-connect/internal/repository"
)

// CreateBooking stores the rental form and notifies the business. Delivery
// is best effort: a failed notification never fails the booking.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var details models.RentalDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		http.Error(w, "Invalid JSON data: "+err.Error(), http.StatusBadRequest)
		return
	}

	details.Normalize()
	if err := details.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	booking := &models.Booking{
		ID:          uuid.NewString(),
		OrderID:     h.relay.NewOrderID(),
		Details:     details,
		ArrivalDate: details.Arrival(),
		Status:      models.BookingPending,
	}
	if err := h.bookingRepo.Create(booking); err != nil {
		slog.Error("failed to save booking", "order_id", booking.OrderID, "error", err)
		http.Error(w, "Failed to save booking", http.StatusInternalServerError)
		return
	}

	req := models.NotificationRequest{RentalDetails: details, NotificationType: models.NotificationRental}
	if err := h.relay.Deliver(r.Context(), booking.OrderID, req); err != nil {
		slog.Warn("booking notification failed", "order_id", booking.OrderID, "error", err)
	}

	slog.Info("booking received", "order_id", booking.OrderID, "plan", details.Plan)
	writeJSON(w, http.StatusCreated, models.NotificationResponse{Success: true, OrderID: booking.OrderID})
}

func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	var filter models.BookingFilter

	if fromStr := r.URL.Query().Get("arrival_from"); fromStr != "" {
		if parsedDate, err := time.Parse("2006-01-02", fromStr); err == nil {
			filter.ArrivalFrom = parsedDate
		}
	}

	if toStr := r.URL.Query().Get("arrival_to"); toStr != "" {
		if parsedDate, err := time.Parse("2006-01-02", toStr); err == nil {
			filter.ArrivalTo = parsedDate
		}
	}

	filter.Plan = r.URL.Query().Get("plan")
	filter.Status = r.URL.Query().Get("status")
	if filter.Status != "" && !models.ValidBookingStatus(filter.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	bookings, pagination, err := h.bookingRepo.GetAll(filter, page, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings":   bookings,
		"pagination": pagination,
	})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	booking, err := h.bookingRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	var req statusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON data: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !models.ValidBookingStatus(req.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	if err := h.bookingRepo.UpdateStatus(orderID, req.Status); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	booking, err := h.bookingRepo.GetByOrderID(orderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// A paid booking triggers the payment notification.
	if req.Status == models.BookingPaid {
		payment := models.NotificationRequest{RentalDetails: booking.Details, NotificationType: models.NotificationPayment}
		if err := h.relay.Deliver(r.Context(), orderID, payment); err != nil {
			slog.Warn("payment notification failed", "order_id", orderID, "error", err)
		}
	}

	slog.Info("booking status updated", "order_id", orderID, "status", req.Status, "by", middleware.AdminSubject(r.Context()))
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) GetBookingNotifications(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	notifications, err := h.notificationRepo.ListByOrderID(orderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}
