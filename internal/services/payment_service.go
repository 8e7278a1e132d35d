package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/gateway"
	applog "weddingsite/internal/log"
	"weddingsite/internal/notify"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// errOrderMoved means a concurrent notification resolved the order first.
// The caller answers 500 so the gateway redelivers.
var errOrderMoved = errors.New("order changed concurrently")

type CheckoutInput struct {
	GiftID        string `json:"gift_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type CheckoutResult struct {
	OrderID      string `json:"order_id"`
	PreferenceID string `json:"preference_id"`
	CheckoutURL  string `json:"checkout_url"`
}

// WebhookResult describes what a notification changed.
type WebhookResult struct {
	Ignored     bool               `json:"ignored,omitempty"`
	OrderID     string             `json:"order_id,omitempty"`
	OrderStatus domain.OrderStatus `json:"order_status,omitempty"`
	SaleCreated bool               `json:"sale_created"`
}

type PaymentService struct {
	DB        *sqlx.DB
	Gateway   gateway.Gateway
	Notify    notify.Notifier
	PublicURL string
	APIURL    string
	now       func() time.Time
}

func NewPaymentService(db *sqlx.DB, gw gateway.Gateway, n notify.Notifier, publicURL, apiURL string) *PaymentService {
	if n == nil {
		n = notify.Noop{}
	}
	return &PaymentService{
		DB:        db,
		Gateway:   gw,
		Notify:    n,
		PublicURL: strings.TrimRight(publicURL, "/"),
		APIURL:    strings.TrimRight(apiURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *PaymentService) backURL(outcome, orderID string) string {
	return fmt.Sprintf("%s/gifts/checkout/%s?order=%s", s.PublicURL, outcome, url.QueryEscape(orderID))
}

// CreatePreference opens a pending order for one unit of a gift and asks the
// gateway for a hosted checkout. Each call creates a new order.
func (s *PaymentService) CreatePreference(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	name, ok := validate.Name(in.CustomerName)
	if !ok {
		return nil, invalid("customer_name", "required, up to 120 characters")
	}
	email, ok := validate.OptionalEmail(in.CustomerEmail)
	if !ok {
		return nil, invalid("customer_email", "invalid address")
	}
	giftID, ok := validate.ID(in.GiftID)
	if !ok {
		return nil, invalid("gift_id", "required")
	}

	gifts := repos.NewGiftRepo(s.DB)
	orders := repos.NewOrderRepo(s.DB)

	g, err := gifts.ByID(ctx, giftID)
	if err != nil {
		return nil, storeErr("get gift", err)
	}
	if g.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	now := s.now()
	o := &domain.Order{
		ID:            uuid.NewString(),
		GiftID:        g.ID,
		CustomerName:  name,
		CustomerEmail: email,
		Status:        domain.OrderPending,
		Gateway:       s.Gateway.Name(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := orders.Create(ctx, o); err != nil {
		return nil, storeErr("create order", err)
	}

	pref, err := s.Gateway.CreatePreference(ctx, gateway.PreferenceRequest{
		ExternalReference: o.ID,
		Item:              gateway.Item{ID: g.ID, Title: g.Name, UnitPrice: g.Price, Quantity: 1},
		PayerName:         name,
		PayerEmail:        email,
		BackURLs: gateway.BackURLs{
			Success: s.backURL("success", o.ID),
			Failure: s.backURL("failure", o.ID),
			Pending: s.backURL("pending", o.ID),
		},
		NotificationURL: s.APIURL + "/api/payments/webhook",
	})
	if err != nil {
		return nil, &UpstreamError{Op: "create preference", Err: err}
	}
	if err := orders.SetPreference(ctx, o.ID, pref.ID, s.now()); err != nil {
		return nil, storeErr("save preference", err)
	}
	applog.Audit(nil, "payment.preference.created", map[string]any{
		"order_id": o.ID, "gift_id": g.ID, "gateway": s.Gateway.Name(), "preference_id": pref.ID,
	})
	return &CheckoutResult{OrderID: o.ID, PreferenceID: pref.ID, CheckoutURL: pref.CheckoutURL}, nil
}

// HandleNotification reconciles one gateway notification. The order update,
// the sale insert and the stock decrement commit together, and the sale is
// keyed by payment id, so redelivered notifications change nothing.
func (s *PaymentService) HandleNotification(ctx context.Context, raw gateway.RawNotification) (*WebhookResult, error) {
	n, err := s.Gateway.ParseNotification(raw)
	if err != nil {
		if errors.Is(err, gateway.ErrBadSignature) || errors.Is(err, gateway.ErrBadPayload) {
			return nil, invalid("notification", err.Error())
		}
		return nil, err
	}
	if n.Type != gateway.NotificationPayment {
		return &WebhookResult{Ignored: true}, nil
	}

	p, err := s.Gateway.GetPayment(ctx, n.PaymentID)
	if err != nil {
		return nil, &UpstreamError{Op: "get payment", Err: err}
	}
	orderID := strings.TrimSpace(p.ExternalReference)
	if orderID == "" {
		return nil, &StorageError{Op: "reconcile payment", Err: fmt.Errorf("payment %s: no external reference: %w", p.ID, ErrNotFound)}
	}

	status := gateway.OrderStatusFor(p.Status)
	res := &WebhookResult{OrderID: orderID}
	var (
		sale  *domain.Sale
		stale bool
	)

	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		gifts := repos.NewGiftRepo(tx)
		sales := repos.NewSaleRepo(tx)
		now := s.now()

		o, err := orders.ByID(ctx, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		next, apply := o.Transition(status, p.ID)
		res.OrderStatus = next
		stale = !apply
		if apply {
			ok, err := orders.Resolve(ctx, o, next, p.RawStatus, p.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return errOrderMoved
			}
		}

		if p.Status != gateway.StatusApproved {
			return nil
		}
		g, err := gifts.ByID(ctx, o.GiftID)
		if err != nil {
			return err
		}
		amount := p.Amount
		if amount == 0 {
			amount = g.Price
		}
		candidate := &domain.Sale{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			GiftID:        g.ID,
			GiftName:      g.Name,
			CustomerName:  o.CustomerName,
			CustomerEmail: firstNonEmpty(o.CustomerEmail, p.PayerEmail),
			Amount:        amount,
			PaymentMethod: p.Method,
			PaymentID:     p.ID,
			Status:        p.Status,
			Notes:         fmt.Sprintf("%s payment for order %s", s.Gateway.Name(), o.ID),
			CreatedAt:     now,
		}
		inserted, err := sales.Insert(ctx, candidate)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		if err := gifts.DecrementStock(ctx, g.ID, now); err != nil {
			return err
		}
		sale = candidate
		return nil
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, errOrderMoved) {
		return nil, &StorageError{Op: "reconcile payment", Err: err}
	}
	if err != nil {
		return nil, storeErr("reconcile payment", err)
	}
	if stale {
		applog.Info(nil, "payment.notification.stale", map[string]any{
			"order_id": orderID, "payment_id": p.ID, "status": p.Status,
		})
	}

	if sale != nil {
		res.SaleCreated = true
		applog.Audit(nil, "payment.sale.created", map[string]any{
			"order_id": sale.OrderID, "payment_id": sale.PaymentID, "gift_id": sale.GiftID, "amount": sale.Amount.String(),
		})
		if err := s.Notify.SaleConfirmed(*sale); err != nil {
			applog.Error(nil, "notify.sale.fail", err, map[string]any{"sale_id": sale.ID})
		}
	} else {
		applog.Info(nil, "payment.notification.applied", map[string]any{
			"order_id": orderID, "payment_id": p.ID, "status": p.Status,
		})
	}
	return res, nil
}

// Order returns an order with its gift for the status page.
func (s *PaymentService) Order(ctx context.Context, id string) (*domain.OrderWithGift, error) {
	if _, ok := validate.ID(id); !ok {
		return nil, ErrNotFound
	}
	o, err := repos.NewOrderRepo(s.DB).ByIDWithGift(ctx, id)
	return o, storeErr("get order", err)
}

func (s *PaymentService) Orders(ctx context.Context, limit int) ([]domain.Order, error) {
	orders, err := repos.NewOrderRepo(s.DB).ListLatest(ctx, limit)
	return orders, storeErr("list orders", err)
}

func (s *PaymentService) Sales(ctx context.Context, limit int) ([]domain.Sale, error) {
	sales, err := repos.NewSaleRepo(s.DB).ListLatest(ctx, limit)
	return sales, storeErr("list sales", err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
