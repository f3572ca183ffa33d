// internal/models/booking.go
package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingPaid      = "paid"
	BookingCancelled = "cancelled"
)

var BookingStatuses = []string{BookingPending, BookingConfirmed, BookingPaid, BookingCancelled}

// RentalDetails is the booking form as posted by the site and forwarded to
// the notification relay.
type RentalDetails struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Plan         string `json:"plan"`
	Location     string `json:"location"`
	ArrivalDate  string `json:"arrivalDate"`
	FlightNumber string `json:"flightNumber"`
	Message      string `json:"message"`
}

type Booking struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"orderId"`
	Details     RentalDetails `json:"rentalDetails"`
	ArrivalDate time.Time     `json:"arrivalDate"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type BookingFilter struct {
	ArrivalFrom time.Time
	ArrivalTo   time.Time
	Plan        string
	Status      string
}

// Normalize trims every field in place.
func (d *RentalDetails) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	d.Plan = strings.TrimSpace(d.Plan)
	d.Location = strings.TrimSpace(d.Location)
	d.ArrivalDate = strings.TrimSpace(d.ArrivalDate)
	d.FlightNumber = strings.ToUpper(strings.TrimSpace(d.FlightNumber))
	d.Message = strings.TrimSpace(d.Message)
}

// Validate checks the fields a booking cannot be handled without.
func (d RentalDetails) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Phone == "" && d.Email == "" {
		errs = append(errs, errors.New("phone or email is required"))
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			errs = append(errs, fmt.Errorf("invalid email %q", d.Email))
		}
	}
	if d.Plan == "" {
		errs = append(errs, errors.New("plan is required"))
	}
	if d.ArrivalDate != "" {
		if _, err := ParseDate(d.ArrivalDate); err != nil {
			errs = append(errs, fmt.Errorf("invalid arrival date %q", d.ArrivalDate))
		}
	}
	return errors.Join(errs...)
}

// Arrival returns the parsed arrival date, zero when none was given.
func (d RentalDetails) Arrival() time.Time {
	t, err := ParseDate(d.ArrivalDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

var dateFormats = []string{
	"2006-01-02",          // YYYY-MM-DD, the form's native value
	time.RFC3339,          // already a timestamp
	"02/01/2006",          // DD/MM/YYYY
	"2006/01/02",          // YYYY/MM/DD
	"02-01-2006",          // DD-MM-YYYY
	"2006-01-02 15:04:05", // YYYY-MM-DD HH:MM:SS
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}

func ValidBookingStatus(status string) bool {
	for _, s := range BookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}
