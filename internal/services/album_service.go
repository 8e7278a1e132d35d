package services

import (
	"context"
	"errors"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PhotoInput struct {
	Gallery  *string `json:"gallery"`
	Title    *string `json:"title"`
	Active   *bool   `json:"active"`
	ImageURL string  `json:"-"`
}

// ReorderItem assigns a display position to one photo.
type ReorderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

type AlbumService struct {
	DB    *sqlx.DB
	Album *repos.AlbumRepo
}

func NewAlbumService(db *sqlx.DB) *AlbumService {
	return &AlbumService{DB: db, Album: repos.NewAlbumRepo(db)}
}

// Gallery returns the active photos of one gallery in display order.
func (s *AlbumService) Gallery(ctx context.Context, gallery string) ([]domain.Photo, error) {
	g, ok := validate.Gallery(gallery)
	if !ok {
		return nil, ErrNotFound
	}
	photos, err := s.Album.ByGallery(ctx, g, true)
	return photos, storeErr("list gallery", err)
}

// Public returns active photos of every gallery.
func (s *AlbumService) Public(ctx context.Context) ([]domain.Photo, error) {
	photos, err := s.Album.All(ctx, true)
	return photos, storeErr("list album", err)
}

// All includes inactive photos (admin).
func (s *AlbumService) All(ctx context.Context) ([]domain.Photo, error) {
	photos, err := s.Album.All(ctx, false)
	return photos, storeErr("list album", err)
}

func (s *AlbumService) Photo(ctx context.Context, id string) (*domain.Photo, error) {
	p, err := s.Album.ByID(ctx, id)
	return p, storeErr("get photo", err)
}

func (s *AlbumService) Add(ctx context.Context, in PhotoInput) (*domain.Photo, error) {
	if in.Gallery == nil {
		return nil, invalid("gallery", "required")
	}
	gallery, ok := validate.Gallery(*in.Gallery)
	if !ok {
		return nil, invalid("gallery", "lowercase letters, digits, - and _")
	}
	if in.ImageURL == "" {
		return nil, invalid("image", "required")
	}
	p := &domain.Photo{
		ID:        uuid.NewString(),
		Gallery:   gallery,
		ImageURL:  in.ImageURL,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if in.Title != nil {
		if p.Title, ok = validate.Text(*in.Title, 200); !ok {
			return nil, invalid("title", "up to 200 characters")
		}
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	next, err := s.Album.NextOrder(ctx, gallery)
	if err != nil {
		return nil, storeErr("add photo", err)
	}
	p.Order = next
	if err := s.Album.Create(ctx, p); err != nil {
		return nil, storeErr("add photo", err)
	}
	return p, nil
}

func (s *AlbumService) Update(ctx context.Context, id string, in PhotoInput) (*domain.Photo, error) {
	p, err := s.Album.ByID(ctx, id)
	if err != nil {
		return nil, storeErr("get photo", err)
	}
	var ok bool
	if in.Gallery != nil {
		if p.Gallery, ok = validate.Gallery(*in.Gallery); !ok {
			return nil, invalid("gallery", "lowercase letters, digits, - and _")
		}
	}
	if in.Title != nil {
		if p.Title, ok = validate.Text(*in.Title, 200); !ok {
			return nil, invalid("title", "up to 200 characters")
		}
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if _, err := s.Album.Update(ctx, p); err != nil {
		return nil, storeErr("update photo", err)
	}
	return p, nil
}

// Delete removes the photo and returns it so the caller can drop the file.
func (s *AlbumService) Delete(ctx context.Context, id string) (*domain.Photo, error) {
	p, err := s.Album.ByID(ctx, id)
	if err != nil {
		return nil, storeErr("get photo", err)
	}
	if _, err := s.Album.Delete(ctx, id); err != nil {
		return nil, storeErr("delete photo", err)
	}
	return p, nil
}

// Reorder persists the supplied order values exactly, in one transaction.
// Any id outside the gallery aborts the whole reorder with ErrNotFound.
func (s *AlbumService) Reorder(ctx context.Context, gallery string, items []ReorderItem) ([]domain.Photo, error) {
	g, ok := validate.Gallery(gallery)
	if !ok {
		return nil, ErrNotFound
	}
	if len(items) == 0 {
		return nil, invalid("items", "at least one photo required")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, invalid("id", "required")
		}
		if seen[it.ID] {
			return nil, invalid("id", "duplicate "+it.ID)
		}
		if it.Order < 0 {
			return nil, invalid("order", "must be zero or more")
		}
		seen[it.ID] = true
	}

	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		album := repos.NewAlbumRepo(tx)
		for _, it := range items {
			found, err := album.SetOrder(ctx, g, it.ID, it.Order)
			if err != nil {
				return err
			}
			if !found {
				return ErrNotFound
			}
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("reorder album", err)
	}
	photos, err := s.Album.ByGallery(ctx, g, false)
	return photos, storeErr("list gallery", err)
}
