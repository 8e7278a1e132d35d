package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weddingsite/internal/domain"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SessionAPI is the part of the Checkout Sessions API used here.
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type sessionClient struct{}

func (sessionClient) New(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(p)
}

func (sessionClient) Get(id string, p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.Get(id, p)
}

// Stripe uses Checkout Sessions as the "preference": the session id doubles
// as the payment id and the order id travels as client_reference_id.
type Stripe struct {
	sessions      SessionAPI
	webhookSecret string
	currency      string
}

func NewStripe(apiKey, webhookSecret, currency string) *Stripe {
	stripe.Key = apiKey
	stripe.SetHTTPClient(&http.Client{Timeout: 10 * time.Second})
	return NewStripeWithSessions(sessionClient{}, webhookSecret, currency)
}

func NewStripeWithSessions(s SessionAPI, webhookSecret, currency string) *Stripe {
	return &Stripe{sessions: s, webhookSecret: webhookSecret, currency: strings.ToLower(currency)}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.BackURLs.Success),
		CancelURL:         stripe.String(req.BackURLs.Failure),
		ClientReferenceID: stripe.String(req.ExternalReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(int64(req.Item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Item.Title),
				},
			},
			Quantity: stripe.Int64(int64(req.Item.Quantity)),
		}},
	}
	if req.PayerEmail != "" {
		params.CustomerEmail = stripe.String(req.PayerEmail)
	}
	params.AddMetadata("order_id", req.ExternalReference)
	params.SetIdempotencyKey(req.ExternalReference)
	params.Context = ctx

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create session: %w", err)
	}
	return &Preference{ID: cs.ID, CheckoutURL: cs.URL}, nil
}

func (s *Stripe) GetPayment(ctx context.Context, id string) (*Payment, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.Context = ctx
	cs, err := s.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get session: %w", err)
	}
	p := &Payment{
		ID:                cs.ID,
		Status:            stripeStatus(cs),
		RawStatus:         fmt.Sprintf("%s/%s", cs.Status, cs.PaymentStatus),
		ExternalReference: cs.ClientReferenceID,
		Amount:            domain.Cents(cs.AmountTotal),
	}
	if p.ExternalReference == "" {
		p.ExternalReference = cs.Metadata["order_id"]
	}
	if len(cs.PaymentMethodTypes) > 0 {
		p.Method = cs.PaymentMethodTypes[0]
	}
	if cs.CustomerDetails != nil {
		p.PayerEmail = cs.CustomerDetails.Email
	}
	return p, nil
}

func stripeStatus(cs *stripe.CheckoutSession) string {
	switch string(cs.PaymentStatus) {
	case "paid", "no_payment_required":
		return StatusApproved
	}
	if string(cs.Status) == "expired" {
		return StatusCancelled
	}
	if pi := cs.PaymentIntent; pi != nil {
		switch string(pi.Status) {
		case "canceled":
			return StatusCancelled
		case "requires_payment_method":
			if string(cs.Status) == "complete" {
				return StatusRejected
			}
		case "processing":
			return StatusInProcess
		}
	}
	return StatusPending
}

// ParseNotification verifies the Stripe-Signature header and maps checkout
// session events to payment notifications.
func (s *Stripe) ParseNotification(n RawNotification) (*Notification, error) {
	event, err := webhook.ConstructEventWithOptions(n.Body, n.Headers["stripe-signature"], s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	switch string(event.Type) {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
	default:
		return &Notification{Type: string(event.Type)}, nil
	}
	if event.Data == nil {
		return nil, ErrBadPayload
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil || cs.ID == "" {
		return nil, fmt.Errorf("%w: checkout session", ErrBadPayload)
	}
	return &Notification{Type: NotificationPayment, PaymentID: cs.ID}, nil
}
