// internal/repository/booking_repository.go
package repository

import (
	"database/sql"
	"errors"
	"time"

	"safari-connect/internal/database"
	"safari-connect/internal/models"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	GetAll(filter models.BookingFilter, page, limit int) ([]models.Booking, *PaginationInfo, error)
	GetByOrderID(orderID string) (*models.Booking, error)
	Create(booking *models.Booking) error
	UpdateStatus(orderID, status string) error
}

type PaginationInfo struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type bookingRepository struct {
	db  *database.DB
	now func() time.Time
}

func NewBookingRepository(db *database.DB) BookingRepository {
	return &bookingRepository{db: db, now: time.Now}
}

const bookingColumns = `id, order_id, name, phone, email, plan, location, arrival_date,
    flight_number, message, status, created_at, updated_at`

func (r *bookingRepository) GetAll(filter models.BookingFilter, page, limit int) ([]models.Booking, *PaginationInfo, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if !filter.ArrivalFrom.IsZero() {
		where += " AND arrival_date >= ?"
		args = append(args, filter.ArrivalFrom)
	}
	if !filter.ArrivalTo.IsZero() {
		where += " AND arrival_date <= ?"
		args = append(args, filter.ArrivalTo)
	}
	if filter.Plan != "" {
		where += " AND plan = ?"
		args = append(args, filter.Plan)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM bookings"+where, args...).Scan(&total); err != nil {
		return nil, nil, err
	}

	query := "SELECT " + bookingColumns + " FROM bookings" + where + " ORDER BY created_at DESC, order_id ASC"
	if limit > 0 {
		offset := (page - 1) * limit
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pagination := &PaginationInfo{
		Total:       total,
		Page:        page,
		Limit:       limit,
		HasNext:     limit > 0 && page*limit < total,
		HasPrevious: page > 1,
	}

	return bookings, pagination, nil
}

func (r *bookingRepository) GetByOrderID(orderID string) (*models.Booking, error) {
	row := r.db.QueryRow("SELECT "+bookingColumns+" FROM bookings WHERE order_id = ?", orderID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (r *bookingRepository) Create(booking *models.Booking) error {
	now := r.now().UTC()
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}

	var arrival sql.NullTime
	if !booking.ArrivalDate.IsZero() {
		arrival = sql.NullTime{Time: booking.ArrivalDate, Valid: true}
	}

	d := booking.Details
	_, err := r.db.Exec(`
        INSERT INTO bookings (id, order_id, name, phone, email, plan, location, arrival_date,
            flight_number, message, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, booking.ID, booking.OrderID, d.Name, d.Phone, d.Email, d.Plan, d.Location, arrival,
		d.FlightNumber, d.Message, booking.Status, now, now)
	if err != nil {
		return err
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (r *bookingRepository) UpdateStatus(orderID, status string) error {
	result, err := r.db.Exec(
		"UPDATE bookings SET status = ?, updated_at = ? WHERE order_id = ?",
		status, r.now().UTC(), orderID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var arrival sql.NullTime
	err := row.Scan(&b.ID, &b.OrderID, &b.Details.Name, &b.Details.Phone, &b.Details.Email,
		&b.Details.Plan, &b.Details.Location, &arrival, &b.Details.FlightNumber,
		&b.Details.Message, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if arrival.Valid {
		b.ArrivalDate = arrival.Time
		b.Details.ArrivalDate = arrival.Time.Format("2006-01-02")
	}
	return &b, nil
}
