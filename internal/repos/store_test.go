package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
)

// exerciseStore runs the dialect-sensitive queries against db.
func exerciseStore(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	gifts := repos.NewGiftRepo(db)
	g := &domain.Gift{ID: "gift-1", Name: "Vase", Price: 12990, Stock: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, gifts.Create(ctx, g))

	orders := repos.NewOrderRepo(db)
	o := &domain.Order{ID: "order-1", GiftID: g.ID, CustomerName: "Ana", Status: domain.OrderPending, Gateway: "mercadopago", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, orders.Create(ctx, o))
	has, err := gifts.HasOrders(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, has)

	err = repos.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		found, err := repos.NewOrderRepo(tx).Resolve(ctx, o, domain.OrderPaid, "approved", "pay-1", now)
		if err == nil && !found {
			t.Error("order not found inside tx")
		}
		return err
	})
	require.NoError(t, err)

	// o still carries the pending state it was read with, so a second write
	// based on it is refused.
	found, err := orders.Resolve(ctx, o, domain.OrderFailed, "rejected", "pay-0", now)
	require.NoError(t, err)
	require.False(t, found)

	current, err := orders.ByID(ctx, o.ID)
	require.NoError(t, err)
	found, err = orders.Resolve(ctx, current, domain.OrderPaid, "refunded", "pay-1", now)
	require.NoError(t, err)
	require.True(t, found)
	found, err = orders.Resolve(ctx, &domain.Order{ID: "missing", Status: domain.OrderPending}, domain.OrderPaid, "approved", "pay-x", now)
	require.NoError(t, err)
	require.False(t, found)

	got, err := orders.ByIDWithGift(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, got.Status)
	require.Equal(t, "refunded", got.GatewayStatus)
	require.Equal(t, "Vase", got.Gift.Name)

	sales := repos.NewSaleRepo(db)
	s := &domain.Sale{ID: "sale-1", OrderID: o.ID, GiftID: g.ID, GiftName: g.Name, CustomerName: "Ana", Amount: g.Price, PaymentMethod: "pix", PaymentID: "pay-1", Status: "approved", CreatedAt: now}
	inserted, err := sales.Insert(ctx, s)
	require.NoError(t, err)
	require.True(t, inserted)
	dup := *s
	dup.ID = "sale-2"
	inserted, err = sales.Insert(ctx, &dup)
	require.NoError(t, err)
	require.False(t, inserted)
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM sales WHERE payment_id = ?`), "pay-1"))
	require.Equal(t, 1, n)

	require.NoError(t, gifts.DecrementStock(ctx, g.ID, now))
	require.NoError(t, gifts.DecrementStock(ctx, g.ID, now))
	g2, err := gifts.ByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, 0, g2.Stock)

	content := repos.NewContentRepo(db)
	require.NoError(t, content.Put(ctx, "home", []byte(`{"title":"a"}`), now))
	require.NoError(t, content.Put(ctx, "home", []byte(`{"title":"b"}`), now))
	body, err := content.Get(ctx, "home")
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"b"}`, string(body))

	album := repos.NewAlbumRepo(db)
	for i, id := range []string{"p1", "p2"} {
		require.NoError(t, album.Create(ctx, &domain.Photo{ID: id, Gallery: "party", ImageURL: "/media/" + id, Order: i, Active: i == 0, CreatedAt: now}))
	}
	active, err := album.ByGallery(ctx, "party", true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	next, err := album.NextOrder(ctx, "party")
	require.NoError(t, err)
	require.Equal(t, 2, next)
	found, err = album.SetOrder(ctx, "ceremony", "p1", 9)
	require.NoError(t, err)
	require.False(t, found)

	users := repos.NewUserRepo(db)
	require.NoError(t, users.Upsert(ctx, &domain.AdminUser{ID: "u1", Email: "couple@example.com", Name: "C", Hash: "$2a$x", CreatedAt: now}))
	u, err := users.ByEmail(ctx, "Couple@Example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	cfg, err := repos.NewConfigRepo(db).Get(ctx)
	require.NoError(t, err)
	require.Empty(t, cfg.MPAccessToken)

	// Re-running migrations is a no-op.
	require.NoError(t, repos.Migrate(db))
}

func TestSQLiteStore(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	exerciseStore(t, db)
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := repos.OpenDB("mysql", "whatever")
	require.Error(t, err)
}
