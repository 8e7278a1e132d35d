package services

import (
	"context"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/google/uuid"
)

// GiftInput carries admin edits. Nil fields are left unchanged on update.
type GiftInput struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *domain.Cents `json:"price"`
	ImageURL    *string       `json:"image_url"`
	Stock       *int          `json:"stock"`
}

type GiftService struct {
	Gifts *repos.GiftRepo
}

func NewGiftService(gifts *repos.GiftRepo) *GiftService { return &GiftService{Gifts: gifts} }

func (s *GiftService) List(ctx context.Context) ([]domain.Gift, error) {
	gifts, err := s.Gifts.List(ctx)
	return gifts, storeErr("list gifts", err)
}

func (s *GiftService) Get(ctx context.Context, id string) (*domain.Gift, error) {
	if _, ok := validate.ID(id); !ok {
		return nil, ErrNotFound
	}
	g, err := s.Gifts.ByID(ctx, id)
	return g, storeErr("get gift", err)
}

func applyGift(g *domain.Gift, in GiftInput) error {
	if in.Name != nil {
		n, ok := validate.Name(*in.Name)
		if !ok {
			return invalid("name", "required, up to 120 characters")
		}
		g.Name = n
	}
	if in.Description != nil {
		d, ok := validate.Text(*in.Description, 2000)
		if !ok {
			return invalid("description", "too long")
		}
		g.Description = d
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return invalid("price", "must be zero or more")
		}
		g.Price = *in.Price
	}
	if in.ImageURL != nil {
		g.ImageURL = *in.ImageURL
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return invalid("stock", "must be zero or more")
		}
		g.Stock = *in.Stock
	}
	return nil
}

func (s *GiftService) Create(ctx context.Context, in GiftInput) (*domain.Gift, error) {
	if in.Name == nil {
		return nil, invalid("name", "required")
	}
	now := time.Now().UTC()
	g := &domain.Gift{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := applyGift(g, in); err != nil {
		return nil, err
	}
	if err := s.Gifts.Create(ctx, g); err != nil {
		return nil, storeErr("create gift", err)
	}
	return g, nil
}

func (s *GiftService) Update(ctx context.Context, id string, in GiftInput) (*domain.Gift, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyGift(g, in); err != nil {
		return nil, err
	}
	g.UpdatedAt = time.Now().UTC()
	ok, err := s.Gifts.Update(ctx, g)
	if err != nil {
		return nil, storeErr("update gift", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Delete removes a gift that no order refers to. It returns the deleted gift
// so the caller can drop its image.
func (s *GiftService) Delete(ctx context.Context, id string) (*domain.Gift, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	used, err := s.Gifts.HasOrders(ctx, id)
	if err != nil {
		return nil, storeErr("delete gift", err)
	}
	if used {
		return nil, ErrInUse
	}
	if _, err := s.Gifts.Delete(ctx, id); err != nil {
		return nil, storeErr("delete gift", err)
	}
	return g, nil
}
