package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"weddingsite/internal/domain"
	applog "weddingsite/internal/log"
	"weddingsite/internal/notify"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/google/uuid"
)

// RSVPInput is the public form. Confirmed defaults to true, Companions to 0.
type RSVPInput struct {
	Name       string `json:"name"`
	Companions *int   `json:"companions"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	Confirmed  *bool  `json:"confirmed"`
}

type RSVPService struct {
	RSVPs  *repos.RSVPRepo
	Notify notify.Notifier
}

func NewRSVPService(rsvps *repos.RSVPRepo, n notify.Notifier) *RSVPService {
	if n == nil {
		n = notify.Noop{}
	}
	return &RSVPService{RSVPs: rsvps, Notify: n}
}

func (s *RSVPService) Submit(ctx context.Context, in RSVPInput) (*domain.RSVP, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("name", "required, up to 120 characters")
	}
	r := &domain.RSVP{
		ID:        uuid.NewString(),
		Name:      name,
		Confirmed: true,
		CreatedAt: time.Now().UTC(),
	}
	if in.Companions != nil {
		if !validate.Companions(*in.Companions) {
			return nil, invalid("companions", "must be between 0 and 20")
		}
		r.Companions = *in.Companions
	}
	if in.Confirmed != nil {
		r.Confirmed = *in.Confirmed
	}
	if r.Email, ok = validate.OptionalEmail(in.Email); !ok {
		return nil, invalid("email", "invalid address")
	}
	if r.Phone, ok = validate.Phone(in.Phone); !ok {
		return nil, invalid("phone", "invalid number")
	}
	if r.Message, ok = validate.Text(in.Message, validate.MaxMessageLen); !ok {
		return nil, invalid("message", "up to 1000 characters")
	}

	if err := s.RSVPs.Create(ctx, r); err != nil {
		return nil, storeErr("create rsvp", err)
	}
	if err := s.Notify.RSVPReceived(*r); err != nil {
		applog.Error(nil, "notify.rsvp.fail", err, map[string]any{"rsvp_id": r.ID})
	}
	return r, nil
}

func (s *RSVPService) List(ctx context.Context) ([]domain.RSVP, error) {
	rows, err := s.RSVPs.List(ctx)
	return rows, storeErr("list rsvps", err)
}

var rsvpCSVHeader = []string{"id", "name", "companions", "email", "phone", "message", "confirmed", "created_at"}

// ExportCSV writes every RSVP, newest first, with a header row.
func (s *RSVPService) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(rsvpCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.ID, r.Name, strconv.Itoa(r.Companions), r.Email, r.Phone, r.Message,
			strconv.FormatBool(r.Confirmed), r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
