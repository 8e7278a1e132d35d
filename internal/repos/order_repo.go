package repos

import (
	"context"
	"time"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ q sqlx.ExtContext }

func NewOrderRepo(q sqlx.ExtContext) *OrderRepo { return &OrderRepo{q: q} }

const orderCols = `id, gift_id, customer_name, customer_email, status, gateway, gateway_status, payment_id, preference_id, created_at, updated_at`

// Create inserts a new order header.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO orders(id, gift_id, customer_name, customer_email, status, gateway, gateway_status, payment_id, preference_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.GiftID, o.CustomerName, o.CustomerEmail, string(o.Status), o.Gateway,
		o.GatewayStatus, o.PaymentID, o.PreferenceID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) ByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.q, &o, r.q.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ByIDWithGift loads the order and the gift it was placed for.
func (r *OrderRepo) ByIDWithGift(ctx context.Context, id string) (*domain.OrderWithGift, error) {
	o, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := NewGiftRepo(r.q).ByID(ctx, o.GiftID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderWithGift{Order: *o, Gift: *g}, nil
}

func (r *OrderRepo) SetPreference(ctx context.Context, id, preferenceID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE orders SET preference_id = ?, updated_at = ? WHERE id = ?`),
		preferenceID, at, id)
	return err
}

// Resolve writes the gateway's view of order o, provided the row still holds
// the status and payment id o was read with. Returns false when the row has
// moved on in the meantime or does not exist.
func (r *OrderRepo) Resolve(ctx context.Context, o *domain.Order, status domain.OrderStatus, gatewayStatus, paymentID string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE orders
		SET status = ?, gateway_status = ?, payment_id = ?, updated_at = ?
		WHERE id = ? AND status = ? AND payment_id = ?`),
		string(status), gatewayStatus, paymentID, at, o.ID, string(o.Status), o.PaymentID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListLatest returns the most recent orders (admin back office).
func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.q, &orders,
		r.q.Rebind(`SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id LIMIT ?`), limit)
	return orders, err
}
