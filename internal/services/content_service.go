package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
)

type ContentService struct {
	Content *repos.ContentRepo
}

func NewContentService(content *repos.ContentRepo) *ContentService {
	return &ContentService{Content: content}
}

// Get returns the typed section. A known section that was never written
// comes back as its zero value.
func (s *ContentService) Get(ctx context.Context, section string) (domain.Section, error) {
	zero, err := domain.NewSection(section)
	if err != nil {
		return nil, ErrNotFound
	}
	raw, err := s.Content.Get(ctx, section)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, nil
	}
	if err != nil {
		return nil, storeErr("get content", err)
	}
	sec, err := domain.DecodeSection(section, raw)
	if err != nil {
		return nil, &StorageError{Op: "decode content", Err: err}
	}
	return sec, nil
}

// Put validates raw against the section schema and stores its canonical form.
func (s *ContentService) Put(ctx context.Context, section string, raw []byte) (domain.Section, error) {
	sec, err := domain.DecodeSection(section, raw)
	if errors.Is(err, domain.ErrUnknownSection) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, invalid("body", err.Error())
	}
	canonical, err := json.Marshal(sec)
	if err != nil {
		return nil, err
	}
	if err := s.Content.Put(ctx, section, canonical, time.Now().UTC()); err != nil {
		return nil, storeErr("put content", err)
	}
	return sec, nil
}
