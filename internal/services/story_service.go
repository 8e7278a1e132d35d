package services

import (
	"context"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/google/uuid"
)

type StoryInput struct {
	DateLabel *string `json:"date_label"`
	Title     *string `json:"title"`
	Text      *string `json:"text"`
	ImageURL  *string `json:"image_url"`
	Order     *int    `json:"order"`
}

type StoryService struct {
	Story *repos.StoryRepo
}

func NewStoryService(story *repos.StoryRepo) *StoryService { return &StoryService{Story: story} }

func (s *StoryService) List(ctx context.Context) ([]domain.StoryEvent, error) {
	events, err := s.Story.List(ctx)
	return events, storeErr("list story", err)
}

func applyStory(e *domain.StoryEvent, in StoryInput) error {
	var ok bool
	if in.Title != nil {
		if e.Title, ok = validate.Name(*in.Title); !ok {
			return invalid("title", "required, up to 120 characters")
		}
	}
	if in.DateLabel != nil {
		if e.DateLabel, ok = validate.Text(*in.DateLabel, 60); !ok {
			return invalid("date_label", "up to 60 characters")
		}
	}
	if in.Text != nil {
		if e.Text, ok = validate.Text(*in.Text, 5000); !ok {
			return invalid("text", "too long")
		}
	}
	if in.ImageURL != nil {
		e.ImageURL = *in.ImageURL
	}
	if in.Order != nil {
		e.Order = *in.Order
	}
	return nil
}

func (s *StoryService) Create(ctx context.Context, in StoryInput) (*domain.StoryEvent, error) {
	if in.Title == nil {
		return nil, invalid("title", "required")
	}
	e := &domain.StoryEvent{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := applyStory(e, in); err != nil {
		return nil, err
	}
	if err := s.Story.Create(ctx, e); err != nil {
		return nil, storeErr("create story event", err)
	}
	return e, nil
}

func (s *StoryService) Update(ctx context.Context, id string, in StoryInput) (*domain.StoryEvent, error) {
	e, err := s.Story.ByID(ctx, id)
	if err != nil {
		return nil, storeErr("get story event", err)
	}
	if err := applyStory(e, in); err != nil {
		return nil, err
	}
	if _, err := s.Story.Update(ctx, e); err != nil {
		return nil, storeErr("update story event", err)
	}
	return e, nil
}

func (s *StoryService) Delete(ctx context.Context, id string) (*domain.StoryEvent, error) {
	e, err := s.Story.ByID(ctx, id)
	if err != nil {
		return nil, storeErr("get story event", err)
	}
	if _, err := s.Story.Delete(ctx, id); err != nil {
		return nil, storeErr("delete story event", err)
	}
	return e, nil
}
