package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"weddingsite/internal/domain"
	"weddingsite/internal/gateway"
	"weddingsite/internal/repos"
	"weddingsite/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedGift(t *testing.T, db *sqlx.DB, name string, price domain.Cents, stock int) *domain.Gift {
	t.Helper()
	svc := services.NewGiftService(repos.NewGiftRepo(db))
	g, err := svc.Create(context.Background(), services.GiftInput{Name: &name, Price: &price, Stock: &stock})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// fakeGateway serves payments from a map and records preferences.
type fakeGateway struct {
	mu       sync.Mutex
	payments map[string]*gateway.Payment
	prefs    []gateway.PreferenceRequest
	failPref error
	lookups  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: map[string]*gateway.Payment{}}
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreatePreference(_ context.Context, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPref != nil {
		return nil, f.failPref
	}
	f.prefs = append(f.prefs, req)
	return &gateway.Preference{ID: "pref-" + req.ExternalReference, CheckoutURL: "https://pay.example/" + req.ExternalReference}, nil
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (*gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	p, ok := f.payments[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeGateway) ParseNotification(n gateway.RawNotification) (*gateway.Notification, error) {
	if n.Query["type"] == "" {
		return nil, gateway.ErrBadPayload
	}
	return &gateway.Notification{Type: n.Query["type"], PaymentID: n.Query["id"]}, nil
}

func (f *fakeGateway) setPayment(p gateway.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = &p
}

func paymentNotification(id string) gateway.RawNotification {
	return gateway.RawNotification{Query: map[string]string{"type": "payment", "id": id}}
}

func ids(photos []domain.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}

func salesFor(t *testing.T, db *sqlx.DB, paymentID string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM sales WHERE payment_id = ?`, paymentID); err != nil {
		t.Fatal(err)
	}
	return n
}
