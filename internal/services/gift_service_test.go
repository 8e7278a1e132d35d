package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/services"
)

func TestGiftCRUD(t *testing.T) {
	db := memdb(t)
	svc := services.NewGiftService(repos.NewGiftRepo(db))
	ctx := context.Background()

	g := seedGift(t, db, "Blender", 25990, 1)
	require.Equal(t, domain.Cents(25990), g.Price)

	desc := "For smoothies"
	stock := 4
	up, err := svc.Update(ctx, g.ID, services.GiftInput{Description: &desc, Stock: &stock})
	require.NoError(t, err)
	require.Equal(t, "Blender", up.Name)
	require.Equal(t, 4, up.Stock)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "For smoothies", list[0].Description)

	_, err = svc.Delete(ctx, g.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, g.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestGiftValidation(t *testing.T) {
	db := memdb(t)
	svc := services.NewGiftService(repos.NewGiftRepo(db))
	ctx := context.Background()
	var ve *services.ValidationError

	_, err := svc.Create(ctx, services.GiftInput{})
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "name", ve.Field)

	name, neg := "Mixer", -1
	_, err = svc.Create(ctx, services.GiftInput{Name: &name, Stock: &neg})
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "stock", ve.Field)
}

func TestGiftWithOrdersCannotBeDeleted(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 1000, 1)
	pay := services.NewPaymentService(db, newFakeGateway(), nil, "http://site", "http://api")
	_, err := pay.CreatePreference(context.Background(), services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)

	_, err = services.NewGiftService(repos.NewGiftRepo(db)).Delete(context.Background(), g.ID)
	require.ErrorIs(t, err, services.ErrInUse)
}
