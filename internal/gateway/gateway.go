// Package gateway talks to the hosted-checkout payment providers.
package gateway

import (
	"context"
	"errors"

	"weddingsite/internal/domain"
)

var (
	ErrBadSignature = errors.New("invalid notification signature")
	ErrBadPayload   = errors.New("malformed notification")
)

// Normalised payment statuses. Providers map their own vocabulary onto these.
const (
	StatusApproved   = "approved"
	StatusPending    = "pending"
	StatusInProcess  = "in_process"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
	StatusChargeback = "charged_back"
)

// NotificationPayment is the only notification type that is reconciled.
const NotificationPayment = "payment"

type Item struct {
	ID        string
	Title     string
	UnitPrice domain.Cents
	Quantity  int
}

type BackURLs struct {
	Success string
	Failure string
	Pending string
}

type PreferenceRequest struct {
	ExternalReference string
	Item              Item
	PayerName         string
	PayerEmail        string
	BackURLs          BackURLs
	NotificationURL   string
}

type Preference struct {
	ID          string
	CheckoutURL string
}

// Payment is the provider's authoritative view of a payment.
type Payment struct {
	ID                string
	Status            string
	RawStatus         string
	ExternalReference string
	Amount            domain.Cents
	Method            string
	PayerEmail        string
}

// RawNotification is an inbound webhook request. Header keys are lowercase.
type RawNotification struct {
	Body    []byte
	Query   map[string]string
	Headers map[string]string
}

type Notification struct {
	Type      string
	PaymentID string
}

type Gateway interface {
	Name() string
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	ParseNotification(n RawNotification) (*Notification, error)
}

// OrderStatusFor maps a normalised payment status to the order lifecycle.
// Statuses that are not final keep the order pending. A rejected card is not
// final: the payer can retry on the same checkout.
func OrderStatusFor(status string) domain.OrderStatus {
	switch status {
	case StatusApproved:
		return domain.OrderPaid
	case StatusCancelled, StatusRefunded, StatusChargeback:
		return domain.OrderFailed
	default:
		return domain.OrderPending
	}
}
