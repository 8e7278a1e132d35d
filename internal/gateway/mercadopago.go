package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"weddingsite/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// TokenFunc resolves the access token per call so it can be changed from the
// admin settings without a restart.
type TokenFunc func(ctx context.Context) string

type MercadoPago struct {
	baseURL       string
	token         TokenFunc
	webhookSecret string
	currency      string
	timeout       time.Duration
}

type MPOption func(*MercadoPago)

func WithTimeout(d time.Duration) MPOption { return func(m *MercadoPago) { m.timeout = d } }

func NewMercadoPago(baseURL string, token TokenFunc, webhookSecret, currency string, opts ...MPOption) *MercadoPago {
	m := &MercadoPago{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		webhookSecret: webhookSecret,
		currency:      currency,
		timeout:       10 * time.Second,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *MercadoPago) Name() string { return "mercadopago" }

type mpItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPreference struct {
	Items []mpItem `json:"items"`
	Payer struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	} `json:"payer"`
	BackURLs struct {
		Success string `json:"success"`
		Failure string `json:"failure"`
		Pending string `json:"pending"`
	} `json:"back_urls"`
	AutoReturn        string `json:"auto_return,omitempty"`
	NotificationURL   string `json:"notification_url"`
	ExternalReference string `json:"external_reference"`
}

type mpPreferenceResp struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type mpPayment struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	TransactionAmount float64     `json:"transaction_amount"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

func (m *MercadoPago) accessToken(ctx context.Context) (string, error) {
	if m.token == nil {
		return "", fmt.Errorf("mercadopago: access token not configured")
	}
	tok := m.token(ctx)
	if tok == "" {
		return "", fmt.Errorf("mercadopago: access token not configured")
	}
	return tok, nil
}

// isSandbox reports whether tok belongs to a Mercado Pago test account.
func isSandbox(tok string) bool { return strings.HasPrefix(tok, "TEST-") }

// do sends the request on agent a with token tok and decodes a 2xx JSON body
// into out.
func (m *MercadoPago) do(ctx context.Context, a *fiber.Agent, tok string, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}
	a.Set("Authorization", "Bearer "+tok)
	a.Timeout(m.timeout)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("mercadopago: %w", err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("mercadopago: %w", errs[0])
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("mercadopago: status %d: %s", code, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mercadopago: decode response: %w", err)
	}
	return nil
}

func (m *MercadoPago) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	tok, err := m.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var p mpPreference
	p.Items = []mpItem{{
		ID:         req.Item.ID,
		Title:      req.Item.Title,
		Quantity:   req.Item.Quantity,
		UnitPrice:  req.Item.UnitPrice.Float(),
		CurrencyID: m.currency,
	}}
	p.Payer.Name = req.PayerName
	p.Payer.Email = req.PayerEmail
	p.BackURLs.Success = req.BackURLs.Success
	p.BackURLs.Failure = req.BackURLs.Failure
	p.BackURLs.Pending = req.BackURLs.Pending
	if strings.HasPrefix(req.BackURLs.Success, "https://") {
		p.AutoReturn = "approved"
	}
	p.NotificationURL = req.NotificationURL
	p.ExternalReference = req.ExternalReference

	a := fiber.Post(m.baseURL + "/checkout/preferences")
	a.Set("X-Idempotency-Key", req.ExternalReference)
	a.JSON(p)

	var resp mpPreferenceResp
	if err := m.do(ctx, a, tok, &resp); err != nil {
		return nil, err
	}
	checkout := resp.InitPoint
	if isSandbox(tok) && resp.SandboxInitPoint != "" {
		checkout = resp.SandboxInitPoint
	}
	if resp.ID == "" || checkout == "" {
		return nil, fmt.Errorf("mercadopago: preference response missing id or init_point")
	}
	return &Preference{ID: resp.ID, CheckoutURL: checkout}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	tok, err := m.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	a := fiber.Get(m.baseURL + "/v1/payments/" + url.PathEscape(id))
	var p mpPayment
	if err := m.do(ctx, a, tok, &p); err != nil {
		return nil, err
	}
	return &Payment{
		ID:                p.ID.String(),
		Status:            p.Status,
		RawStatus:         p.Status,
		ExternalReference: p.ExternalReference,
		Amount:            domain.CentsFromFloat(p.TransactionAmount),
		Method:            p.PaymentMethodID,
		PayerEmail:        p.Payer.Email,
	}, nil
}

type mpNotification struct {
	Type     string `json:"type"`
	Topic    string `json:"topic"`
	Resource string `json:"resource"`
	Data     struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// ParseNotification accepts both the JSON webhook body and the legacy
// query-string (IPN) form.
func (m *MercadoPago) ParseNotification(n RawNotification) (*Notification, error) {
	var body mpNotification
	if len(bytes.TrimSpace(n.Body)) > 0 {
		if err := json.Unmarshal(n.Body, &body); err != nil && len(n.Query) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
	}

	typ := firstNonEmpty(body.Type, body.Topic, n.Query["type"], n.Query["topic"])
	id := firstNonEmpty(strings.Trim(string(body.Data.ID), `"`), n.Query["data.id"], n.Query["id"])
	if id == "" && body.Resource != "" {
		id = path.Base(body.Resource)
	}
	if typ == "" && id == "" {
		return nil, ErrBadPayload
	}

	if m.webhookSecret != "" {
		if err := m.verifySignature(n, firstNonEmpty(n.Query["data.id"], id)); err != nil {
			return nil, err
		}
	}

	if typ != NotificationPayment {
		return &Notification{Type: typ}, nil
	}
	if id == "" {
		return nil, fmt.Errorf("%w: payment id missing", ErrBadPayload)
	}
	return &Notification{Type: typ, PaymentID: id}, nil
}

// verifySignature checks the x-signature header: ts=<unix>,v1=<hex hmac> over
// the manifest "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
func (m *MercadoPago) verifySignature(n RawNotification, dataID string) error {
	var ts, v1 string
	for _, part := range strings.Split(n.Headers["x-signature"], ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return ErrBadSignature
	}
	want := SignMercadoPago(m.webhookSecret, dataID, n.Headers["x-request-id"], ts)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(v1))) {
		return ErrBadSignature
	}
	return nil
}

// SignMercadoPago computes the hex v1 signature for a notification.
func SignMercadoPago(secret, dataID, requestID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		manifest.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
