package domain

import "time"

// SiteConfig is the single settings row (id = 1).
type SiteConfig struct {
	SiteTitle      string    `db:"site_title" json:"site_title"`
	WeddingDate    string    `db:"wedding_date" json:"wedding_date"`
	PixKey         string    `db:"pix_key" json:"pix_key"`
	PixDescription string    `db:"pix_description" json:"pix_description"`
	PixQRImage     string    `db:"pix_qr_image" json:"pix_qr_image"`
	MPPublicKey    string    `db:"mp_public_key" json:"mp_public_key"`
	MPAccessToken  string    `db:"mp_access_token" json:"mp_access_token"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PublicSiteConfig is what anonymous callers see: no gateway secrets.
type PublicSiteConfig struct {
	SiteTitle      string    `json:"site_title"`
	WeddingDate    string    `json:"wedding_date"`
	PixKey         string    `json:"pix_key"`
	PixDescription string    `json:"pix_description"`
	PixQRImage     string    `json:"pix_qr_image"`
	MPPublicKey    string    `json:"mp_public_key"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c SiteConfig) Public() PublicSiteConfig {
	return PublicSiteConfig{
		SiteTitle:      c.SiteTitle,
		WeddingDate:    c.WeddingDate,
		PixKey:         c.PixKey,
		PixDescription: c.PixDescription,
		PixQRImage:     c.PixQRImage,
		MPPublicKey:    c.MPPublicKey,
		UpdatedAt:      c.UpdatedAt,
	}
}
