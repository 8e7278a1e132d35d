package services

import (
	"context"
	"errors"
	"io"

	applog "weddingsite/internal/log"
	"weddingsite/internal/storage"

	"github.com/google/uuid"
)

type MediaService struct {
	Store    storage.Storage
	MaxWidth uint
}

func NewMediaService(store storage.Storage, maxWidth uint) *MediaService {
	return &MediaService{Store: store, MaxWidth: maxWidth}
}

// SaveImage normalises an uploaded image and stores it under folder.
func (s *MediaService) SaveImage(ctx context.Context, folder string, r io.Reader) (string, error) {
	data, err := storage.ProcessImage(r, s.MaxWidth)
	if err != nil {
		return "", invalid("image", "unsupported or corrupt image")
	}
	url, err := s.Store.Save(ctx, folder+"/"+uuid.NewString()+".jpg", "image/jpeg", data)
	if err != nil {
		return "", &StorageError{Op: "save image", Err: err}
	}
	return url, nil
}

// Remove deletes a stored image. Failures are logged, never returned: the
// owning record is already gone.
func (s *MediaService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.Store.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrNotManaged) {
		applog.Error(nil, "media.delete.fail", err, map[string]any{"url": url})
	}
}
