package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"weddingsite/internal/config"
	"weddingsite/internal/gateway"
	"weddingsite/internal/http/handlers"
	"weddingsite/internal/repos"
)

const (
	adminEmail    = "couple@example.com"
	adminPassword = "Wedding2026"
)

// mpStub stands in for the Mercado Pago REST API.
type mpStub struct {
	*httptest.Server
	mu       sync.Mutex
	payments map[string]map[string]any
	prefs    int
}

func newMPStub(t *testing.T) *mpStub {
	t.Helper()
	s := &mpStub{payments: map[string]map[string]any{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /checkout/preferences", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.prefs++
		n := s.prefs
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         fmt.Sprintf("pref-%d", n),
			"init_point": fmt.Sprintf("https://mp.test/checkout/%d", n),
		})
	})
	mux.HandleFunc("GET /v1/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		p, ok := s.payments[r.PathValue("id")]
		s.mu.Unlock()
		if !ok {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *mpStub) setPayment(id, status, orderID string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[id] = map[string]any{
		"id":                 json.Number(id),
		"status":             status,
		"external_reference": orderID,
		"transaction_amount": amount,
		"payment_method_id":  "pix",
		"payer":              map[string]any{"email": "guest@example.com"},
	}
}

type testEnv struct {
	app   *fiber.App
	db    *sqlx.DB
	deps  *handlers.Deps
	mp    *mpStub
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		DBDriver:      "sqlite",
		MediaDir:      t.TempDir(),
		JWTSecret:     "test-secret",
		JWTTTL:        time.Hour,
		PublicURL:     "http://site.test",
		APIURL:        "http://api.test",
		CORSOrigins:   "*",
		Currency:      "BRL",
		ImageMaxWidth: 64,
	}
	stub := newMPStub(t)
	gw := gateway.NewMercadoPago(stub.URL, func(context.Context) string { return "TEST-token" }, "", cfg.Currency)

	deps, err := handlers.NewDeps(db, cfg, handlers.Options{Gateway: gw})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = deps.Auth.EnsureAdmin(ctx, adminEmail, "Couple", adminPassword)
	require.NoError(t, err)
	token, _, err := deps.Auth.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	return &testEnv{app: handlers.NewApp(deps, cfg), db: db, deps: deps, mp: stub, token: token}
}

// do sends a request; body may be nil, a string (sent as JSON) or a *multipartBody.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	case *multipartBody:
		req = httptest.NewRequest(method, path, &b.buf)
		req.Header.Set("Content-Type", b.contentType)
	default:
		t.Fatalf("unsupported body %T", body)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type multipartBody struct {
	buf         bytes.Buffer
	contentType string
}

// newMultipart builds a form with the given fields and, when fileField is
// set, a small PNG under that field.
func newMultipart(t *testing.T, fields map[string]string, fileField string) *multipartBody {
	t.Helper()
	mb := &multipartBody{}
	w := multipart.NewWriter(&mb.buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, "photo.png")
		require.NoError(t, err)
		img := image.NewRGBA(image.Rect(0, 0, 128, 96))
		for x := 0; x < 128; x++ {
			img.Set(x, x%96, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
		require.NoError(t, png.Encode(fw, img))
	}
	require.NoError(t, w.Close())
	mb.contentType = w.FormDataContentType()
	return mb
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	AdminID string         `json:"admin_id"`
	Fields  map[string]any `json:"fields"`
}

// captureLogs temporarily replaces the standard logger output.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
