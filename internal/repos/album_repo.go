package repos

import (
	"context"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AlbumRepo struct{ q sqlx.ExtContext }

func NewAlbumRepo(q sqlx.ExtContext) *AlbumRepo { return &AlbumRepo{q: q} }

const photoCols = `id, gallery, image_url, title, order_index, active, created_at`

// ByGallery lists a gallery's photos by display order.
func (r *AlbumRepo) ByGallery(ctx context.Context, gallery string, activeOnly bool) ([]domain.Photo, error) {
	photos := []domain.Photo{}
	q := `SELECT ` + photoCols + ` FROM photos WHERE gallery = ?`
	args := []any{gallery}
	if activeOnly {
		q += ` AND active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY order_index, created_at, id`
	err := sqlx.SelectContext(ctx, r.q, &photos, r.q.Rebind(q), args...)
	return photos, err
}

// All lists photos of every gallery, grouped by gallery then display order.
func (r *AlbumRepo) All(ctx context.Context, activeOnly bool) ([]domain.Photo, error) {
	photos := []domain.Photo{}
	q := `SELECT ` + photoCols + ` FROM photos`
	var args []any
	if activeOnly {
		q += ` WHERE active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY gallery, order_index, created_at, id`
	err := sqlx.SelectContext(ctx, r.q, &photos, r.q.Rebind(q), args...)
	return photos, err
}

func (r *AlbumRepo) ByID(ctx context.Context, id string) (*domain.Photo, error) {
	var p domain.Photo
	err := sqlx.GetContext(ctx, r.q, &p, r.q.Rebind(`SELECT `+photoCols+` FROM photos WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// NextOrder is one past the highest order index in the gallery.
func (r *AlbumRepo) NextOrder(ctx context.Context, gallery string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		r.q.Rebind(`SELECT COALESCE(MAX(order_index), -1) + 1 FROM photos WHERE gallery = ?`), gallery)
	return n, err
}

func (r *AlbumRepo) Create(ctx context.Context, p *domain.Photo) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		INSERT INTO photos(id, gallery, image_url, title, order_index, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Gallery, p.ImageURL, p.Title, p.Order, p.Active, p.CreatedAt)
	return err
}

func (r *AlbumRepo) Update(ctx context.Context, p *domain.Photo) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE photos SET gallery = ?, image_url = ?, title = ?, order_index = ?, active = ? WHERE id = ?`),
		p.Gallery, p.ImageURL, p.Title, p.Order, p.Active, p.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetOrder moves one photo within its gallery. Returns false when the id is
// not a photo of that gallery.
func (r *AlbumRepo) SetOrder(ctx context.Context, gallery, id string, order int) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE photos SET order_index = ? WHERE id = ? AND gallery = ?`),
		order, id, gallery)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AlbumRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM photos WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
