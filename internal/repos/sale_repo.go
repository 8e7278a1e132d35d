package repos

import (
	"context"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SaleRepo struct{ q sqlx.ExtContext }

func NewSaleRepo(q sqlx.ExtContext) *SaleRepo { return &SaleRepo{q: q} }

// Insert records a sale unless one already exists for the same payment id.
// It reports whether a row was written.
func (r *SaleRepo) Insert(ctx context.Context, s *domain.Sale) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO sales(id, order_id, gift_id, gift_name, customer_name, customer_email, amount_cents, payment_method, payment_id, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_id) DO NOTHING`),
		s.ID, s.OrderID, s.GiftID, s.GiftName, s.CustomerName, s.CustomerEmail, int64(s.Amount),
		s.PaymentMethod, s.PaymentID, s.Status, s.Notes, s.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SaleRepo) ListLatest(ctx context.Context, limit int) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	err := sqlx.SelectContext(ctx, r.q, &sales, r.q.Rebind(`
		SELECT id, order_id, gift_id, gift_name, customer_name, customer_email, amount_cents, payment_method, payment_id, status, notes, created_at
		FROM sales ORDER BY created_at DESC, id LIMIT ?`), limit)
	return sales, err
}
