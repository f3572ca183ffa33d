// internal/notify/relay.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"safari-connect/internal/models"
)

var (
	ErrUnknownNotificationType = errors.New("unknown notification type")
	ErrMissingName             = errors.New("rental details need a name")
)

// Recorder stores one row per relay attempt.
type Recorder interface {
	Record(n *models.Notification) error
}

// Relay fans a booking notification out to every configured channel.
type Relay struct {
	notifiers []Notifier
	recorder  Recorder
	rand      Rand
	now       func() time.Time
}

type RelayOption func(*Relay)

func WithRecorder(rec Recorder) RelayOption {
	return func(r *Relay) { r.recorder = rec }
}

func WithRand(rnd Rand) RelayOption {
	return func(r *Relay) { r.rand = rnd }
}

func WithClock(now func() time.Time) RelayOption {
	return func(r *Relay) { r.now = now }
}

func NewRelay(notifiers []Notifier, opts ...RelayOption) *Relay {
	r := &Relay{
		notifiers: notifiers,
		rand:      globalRand{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewOrderID mints an order id from the relay's clock and random source.
func (r *Relay) NewOrderID() string {
	return NewOrderID(r.now(), r.rand)
}

// Send handles a relay request: it assigns an order id and delivers it.
func (r *Relay) Send(ctx context.Context, req models.NotificationRequest) (string, error) {
	if err := checkRequest(req); err != nil {
		return "", err
	}
	orderID := r.NewOrderID()
	if err := r.Deliver(ctx, orderID, req); err != nil {
		return "", err
	}
	return orderID, nil
}

// Deliver sends req under an existing order id. Every channel is tried;
// the returned error joins the failures.
func (r *Relay) Deliver(ctx context.Context, orderID string, req models.NotificationRequest) error {
	if err := checkRequest(req); err != nil {
		return err
	}

	msg := Message{OrderID: orderID, Type: req.NotificationType, Details: req.RentalDetails}

	var errs []error
	names := make([]string, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		names = append(names, n.Name())
		if err := n.Notify(ctx, msg); err != nil {
			slog.Warn("notification channel failed", "channel", n.Name(), "order_id", orderID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	err := errors.Join(errs...)

	r.record(orderID, req.NotificationType, names, err)
	return err
}

func (r *Relay) record(orderID string, typ models.NotificationType, channels []string, sendErr error) {
	if r.recorder == nil {
		return
	}
	n := &models.Notification{
		OrderID:   orderID,
		Type:      typ,
		Channels:  strings.Join(channels, ","),
		Success:   sendErr == nil,
		CreatedAt: r.now().UTC(),
	}
	if sendErr != nil {
		n.Error = sendErr.Error()
	}
	if err := r.recorder.Record(n); err != nil {
		slog.Warn("failed to record notification", "order_id", orderID, "error", err)
	}
}

func checkRequest(req models.NotificationRequest) error {
	if !req.NotificationType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownNotificationType, req.NotificationType)
	}
	if strings.TrimSpace(req.RentalDetails.Name) == "" {
		return ErrMissingName
	}
	return nil
}
