package services

import (
	"context"
	"strings"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"
)

type SiteConfigInput struct {
	SiteTitle      *string `json:"site_title"`
	WeddingDate    *string `json:"wedding_date"`
	PixKey         *string `json:"pix_key"`
	PixDescription *string `json:"pix_description"`
	PixQRImage     *string `json:"pix_qr_image"`
	MPPublicKey    *string `json:"mp_public_key"`
	MPAccessToken  *string `json:"mp_access_token"`
}

type SiteConfigService struct {
	Config *repos.ConfigRepo
}

func NewSiteConfigService(cfg *repos.ConfigRepo) *SiteConfigService {
	return &SiteConfigService{Config: cfg}
}

func (s *SiteConfigService) Get(ctx context.Context) (*domain.SiteConfig, error) {
	c, err := s.Config.Get(ctx)
	return c, storeErr("get config", err)
}

func (s *SiteConfigService) Update(ctx context.Context, in SiteConfigInput) (*domain.SiteConfig, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v *string, field string, max int) error {
		if v == nil {
			return nil
		}
		t, ok := validate.Text(*v, max)
		if !ok {
			return invalid(field, "too long")
		}
		*dst = t
		return nil
	}
	for _, f := range []struct {
		dst   *string
		v     *string
		field string
		max   int
	}{
		{&c.SiteTitle, in.SiteTitle, "site_title", 120},
		{&c.WeddingDate, in.WeddingDate, "wedding_date", 40},
		{&c.PixKey, in.PixKey, "pix_key", 140},
		{&c.PixDescription, in.PixDescription, "pix_description", 500},
		{&c.PixQRImage, in.PixQRImage, "pix_qr_image", 500},
		{&c.MPPublicKey, in.MPPublicKey, "mp_public_key", 200},
		{&c.MPAccessToken, in.MPAccessToken, "mp_access_token", 200},
	} {
		if err := set(f.dst, f.v, f.field, f.max); err != nil {
			return nil, err
		}
	}
	if c.WeddingDate != "" {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(c.WeddingDate)); err != nil {
			if _, err := time.Parse(time.RFC3339, c.WeddingDate); err != nil {
				return nil, invalid("wedding_date", "use YYYY-MM-DD or RFC 3339")
			}
		}
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.Config.Save(ctx, c); err != nil {
		return nil, storeErr("save config", err)
	}
	return c, nil
}

// MercadoPagoToken returns the access token stored in the settings, or
// fallback when none is set.
func (s *SiteConfigService) MercadoPagoToken(ctx context.Context, fallback string) string {
	c, err := s.Config.Get(ctx)
	if err != nil || c.MPAccessToken == "" {
		return fallback
	}
	return c.MPAccessToken
}
