package repos

import (
	"context"
	"time"

	"weddingsite/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ConfigRepo struct{ q sqlx.ExtContext }

func NewConfigRepo(q sqlx.ExtContext) *ConfigRepo { return &ConfigRepo{q: q} }

func (r *ConfigRepo) Get(ctx context.Context) (*domain.SiteConfig, error) {
	var c domain.SiteConfig
	err := sqlx.GetContext(ctx, r.q, &c, `
		SELECT site_title, wedding_date, pix_key, pix_description, pix_qr_image, mp_public_key, mp_access_token, updated_at
		FROM site_config WHERE id = 1`)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConfigRepo) Save(ctx context.Context, c *domain.SiteConfig) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`
		UPDATE site_config
		SET site_title = ?, wedding_date = ?, pix_key = ?, pix_description = ?, pix_qr_image = ?,
		    mp_public_key = ?, mp_access_token = ?, updated_at = ?
		WHERE id = 1`),
		c.SiteTitle, c.WeddingDate, c.PixKey, c.PixDescription, c.PixQRImage,
		c.MPPublicKey, c.MPAccessToken, c.UpdatedAt)
	return err
}
