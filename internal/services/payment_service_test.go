package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"weddingsite/internal/domain"
	"weddingsite/internal/gateway"
	"weddingsite/internal/repos"
	"weddingsite/internal/services"
)

func TestCreatePreferenceOpensPendingOrder(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 15000, 2)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "https://site.example/", "https://api.example")

	res, err := svc.CreatePreference(context.Background(), services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	require.Equal(t, "https://pay.example/"+res.OrderID, res.CheckoutURL)

	require.Len(t, gw.prefs, 1)
	req := gw.prefs[0]
	require.Equal(t, res.OrderID, req.ExternalReference)
	require.Equal(t, "https://api.example/api/payments/webhook", req.NotificationURL)
	require.Equal(t, "https://site.example/gifts/checkout/success?order="+res.OrderID, req.BackURLs.Success)
	require.Equal(t, domain.Cents(15000), req.Item.UnitPrice)

	o, err := svc.Order(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Equal(t, "pref-"+res.OrderID, o.PreferenceID)
	require.Equal(t, "Toaster", o.Gift.Name)
}

func TestCreatePreferenceErrors(t *testing.T) {
	db := memdb(t)
	empty := seedGift(t, db, "Sold out", 1000, 0)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	_, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: empty.ID, CustomerName: "Ana"})
	require.ErrorIs(t, err, services.ErrOutOfStock)

	_, err = svc.CreatePreference(ctx, services.CheckoutInput{GiftID: "missing", CustomerName: "Ana"})
	require.ErrorIs(t, err, services.ErrNotFound)

	var ve *services.ValidationError
	_, err = svc.CreatePreference(ctx, services.CheckoutInput{GiftID: empty.ID})
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "customer_name", ve.Field)

	ok := seedGift(t, db, "Kettle", 1000, 1)
	gw.failPref = errors.New("boom")
	_, err = svc.CreatePreference(ctx, services.CheckoutInput{GiftID: ok.ID, CustomerName: "Ana"})
	var ue *services.UpstreamError
	require.True(t, errors.As(err, &ue))
}

func TestWebhookIsIdempotent(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 15000, 3)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	checkout, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)
	gw.setPayment(gateway.Payment{ID: "pay-1", Status: "approved", RawStatus: "approved", ExternalReference: checkout.OrderID, Amount: 15000, Method: "pix"})

	first, err := svc.HandleNotification(ctx, paymentNotification("pay-1"))
	require.NoError(t, err)
	require.True(t, first.SaleCreated)
	require.Equal(t, domain.OrderPaid, first.OrderStatus)

	second, err := svc.HandleNotification(ctx, paymentNotification("pay-1"))
	require.NoError(t, err)
	require.False(t, second.SaleCreated)

	require.Equal(t, 1, salesFor(t, db, "pay-1"))

	gift, err := repos.NewGiftRepo(db).ByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, 2, gift.Stock)

	o, err := svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, o.Status)
	require.Equal(t, "pay-1", o.PaymentID)
}

func TestWebhookStatusIsMonotonic(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 15000, 1)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	checkout, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)

	gw.setPayment(gateway.Payment{ID: "pay-2", Status: "in_process", RawStatus: "in_process", ExternalReference: checkout.OrderID})
	res, err := svc.HandleNotification(ctx, paymentNotification("pay-2"))
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, res.OrderStatus)

	gw.setPayment(gateway.Payment{ID: "pay-2", Status: "approved", RawStatus: "approved", ExternalReference: checkout.OrderID})
	_, err = svc.HandleNotification(ctx, paymentNotification("pay-2"))
	require.NoError(t, err)

	// A refund of the same payment is recorded but the order stays paid.
	gw.setPayment(gateway.Payment{ID: "pay-2", Status: "refunded", RawStatus: "refunded", ExternalReference: checkout.OrderID})
	res, err = svc.HandleNotification(ctx, paymentNotification("pay-2"))
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, res.OrderStatus)

	o, err := svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, o.Status)
	require.Equal(t, "refunded", o.GatewayStatus)
	require.Equal(t, "pay-2", o.PaymentID)
}

func TestWebhookRejectedThenApprovedRetry(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 15000, 2)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	checkout, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)

	gw.setPayment(gateway.Payment{ID: "1", Status: "rejected", RawStatus: "rejected", ExternalReference: checkout.OrderID})
	res, err := svc.HandleNotification(ctx, paymentNotification("1"))
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, res.OrderStatus)

	o, err := svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Equal(t, "rejected", o.GatewayStatus)

	gw.setPayment(gateway.Payment{ID: "2", Status: "approved", RawStatus: "approved", ExternalReference: checkout.OrderID, Amount: 15000})
	res, err = svc.HandleNotification(ctx, paymentNotification("2"))
	require.NoError(t, err)
	require.True(t, res.SaleCreated)
	require.Equal(t, domain.OrderPaid, res.OrderStatus)

	// A late redelivery of the declined attempt changes nothing.
	res, err = svc.HandleNotification(ctx, paymentNotification("1"))
	require.NoError(t, err)
	require.False(t, res.SaleCreated)
	require.Equal(t, domain.OrderPaid, res.OrderStatus)

	o, err = svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, o.Status)
	require.Equal(t, "approved", o.GatewayStatus)
	require.Equal(t, "2", o.PaymentID)
	require.Equal(t, 1, salesFor(t, db, "2"))
	require.Equal(t, 0, salesFor(t, db, "1"))

	gift, err := repos.NewGiftRepo(db).ByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, 1, gift.Stock)
}

func TestWebhookApprovalReopensFailedOrder(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Toaster", 15000, 1)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	checkout, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)

	gw.setPayment(gateway.Payment{ID: "10", Status: "cancelled", RawStatus: "cancelled", ExternalReference: checkout.OrderID})
	res, err := svc.HandleNotification(ctx, paymentNotification("10"))
	require.NoError(t, err)
	require.Equal(t, domain.OrderFailed, res.OrderStatus)

	// Another failed attempt does not overwrite the one that closed the order.
	gw.setPayment(gateway.Payment{ID: "11", Status: "charged_back", RawStatus: "charged_back", ExternalReference: checkout.OrderID})
	_, err = svc.HandleNotification(ctx, paymentNotification("11"))
	require.NoError(t, err)
	o, err := svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, "10", o.PaymentID)
	require.Equal(t, "cancelled", o.GatewayStatus)

	gw.setPayment(gateway.Payment{ID: "12", Status: "approved", RawStatus: "approved", ExternalReference: checkout.OrderID})
	res, err = svc.HandleNotification(ctx, paymentNotification("12"))
	require.NoError(t, err)
	require.True(t, res.SaleCreated)
	require.Equal(t, domain.OrderPaid, res.OrderStatus)

	o, err = svc.Order(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, o.Status)
	require.Equal(t, "12", o.PaymentID)
}

func TestStockClampsAtZero(t *testing.T) {
	db := memdb(t)
	g := seedGift(t, db, "Last one", 5000, 1)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	a, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Ana"})
	require.NoError(t, err)
	b, err := svc.CreatePreference(ctx, services.CheckoutInput{GiftID: g.ID, CustomerName: "Bruno"})
	require.NoError(t, err)

	gw.setPayment(gateway.Payment{ID: "p-a", Status: "approved", ExternalReference: a.OrderID})
	gw.setPayment(gateway.Payment{ID: "p-b", Status: "approved", ExternalReference: b.OrderID})
	for _, id := range []string{"p-a", "p-b"} {
		res, err := svc.HandleNotification(ctx, paymentNotification(id))
		require.NoError(t, err)
		require.True(t, res.SaleCreated)
	}

	gift, err := repos.NewGiftRepo(db).ByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, 0, gift.Stock)

	sales, err := svc.Sales(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.Equal(t, domain.Cents(5000), sales[0].Amount)
}

func TestWebhookIgnoresOtherTypesAndUnknownOrders(t *testing.T) {
	db := memdb(t)
	gw := newFakeGateway()
	svc := services.NewPaymentService(db, gw, nil, "http://site", "http://api")
	ctx := context.Background()

	res, err := svc.HandleNotification(ctx, gateway.RawNotification{Query: map[string]string{"type": "merchant_order", "id": "1"}})
	require.NoError(t, err)
	require.True(t, res.Ignored)
	require.Equal(t, 0, gw.lookups)

	gw.setPayment(gateway.Payment{ID: "pay-x", Status: "approved", ExternalReference: "no-such-order"})
	_, err = svc.HandleNotification(ctx, paymentNotification("pay-x"))
	require.ErrorIs(t, err, services.ErrNotFound)
	var se *services.StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 0, salesFor(t, db, "pay-x"))

	_, err = svc.HandleNotification(ctx, paymentNotification("unknown-payment"))
	var ue *services.UpstreamError
	require.True(t, errors.As(err, &ue))

	var ve *services.ValidationError
	_, err = svc.HandleNotification(ctx, gateway.RawNotification{})
	require.True(t, errors.As(err, &ve))
}
