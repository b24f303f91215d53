package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/handlers"
	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/realtime"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
	"github.com/lokerhub/lokerhub-api/internal/services/payment"
	"github.com/lokerhub/lokerhub-api/internal/testutil"
)

// asAccount stands in for the JWT middleware: it plants the locals the
// handlers read their identity from.
func asAccount(id uuid.UUID, role models.AccountType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", id.String())
		c.Locals("role", string(role))
		return c.Next()
	}
}

func newWalletApp(t *testing.T, id uuid.UUID, role models.AccountType) (*fiber.App, *gorm.DB, *payment.Gateway) {
	gdb := testutil.NewDB(t)
	engine := coin.NewEngine(gdb)
	gateway := payment.NewGateway(gdb, engine, "rahasia-merchant")
	notifier := realtime.NewNotifier(realtime.NewHub(), nil)
	h := handlers.NewWalletHandler(gdb, engine, gateway, notifier)

	app := fiber.New()
	wallet := app.Group("/wallet", asAccount(id, role))
	wallet.Get("/balance", h.GetBalance)
	wallet.Get("/transactions", h.GetTransactions)
	wallet.Get("/packages", h.GetPackages)
	wallet.Post("/purchase/verify", h.VerifyPurchase)
	return app, gdb, gateway
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestWalletGetBalance(t *testing.T) {
	id := uuid.New()
	app, gdb, _ := newWalletApp(t, id, models.AccountJobSeeker)

	acc := models.JobSeeker{
		ID: id, Name: "Budi", Email: "budi@example.com", Password: "x",
		CoinBalance: 42, ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet/balance", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["balance"])
}

func TestWalletGetBalanceUnknownAccount(t *testing.T) {
	app, _, _ := newWalletApp(t, uuid.New(), models.AccountJobSeeker)

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet/balance", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestWalletGetTransactions(t *testing.T) {
	id := uuid.New()
	app, gdb, _ := newWalletApp(t, id, models.AccountJobSeeker)

	acc := models.JobSeeker{
		ID: id, Name: "Budi", Email: "budi@example.com", Password: "x",
		ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)

	engine := coin.NewEngine(gdb)
	ref := models.AccountRef{ID: id, Type: models.AccountJobSeeker}
	for i := 0; i < 4; i++ {
		_, err := engine.Credit(context.Background(), ref, coin.CreditParams{Amount: 10, Kind: models.CoinTrxPurchase})
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet/transactions?page=1&limit=3", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
	assert.Len(t, data["transactions"], 3)
}

func TestWalletVerifyPurchase(t *testing.T) {
	id := uuid.New()
	app, gdb, gateway := newWalletApp(t, id, models.AccountJobSeeker)

	acc := models.JobSeeker{
		ID: id, Name: "Budi", Email: "budi@example.com", Password: "x",
		ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)

	pkg := models.CoinPackage{ID: uuid.New(), Name: "Paket Reguler", Coins: 120, Price: 50000, IsActive: true}
	require.NoError(t, gdb.Create(&pkg).Error)

	reqBody := fmt.Sprintf(
		`{"package_id":%q,"order_ref":"ORD-1","payment_ref":"PAY-1","signature":%q}`,
		pkg.ID, gateway.Sign("ORD-1", "PAY-1"),
	)
	makeReq := func() *http.Request {
		req := httptest.NewRequest("POST", "/wallet/purchase/verify", bytes.NewReader([]byte(reqBody)))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	resp, err := app.Test(makeReq())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(120), data["balance"])

	// Replay: balasan sama, saldo tidak berubah.
	resp, err = app.Test(makeReq())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(120), data["balance"])

	var stored models.JobSeeker
	require.NoError(t, gdb.Take(&stored, "id = ?", id).Error)
	assert.Equal(t, int64(120), stored.CoinBalance)
}

func TestWalletVerifyPurchaseBadRequest(t *testing.T) {
	id := uuid.New()
	app, gdb, _ := newWalletApp(t, id, models.AccountJobSeeker)

	acc := models.JobSeeker{
		ID: id, Name: "Budi", Email: "budi@example.com", Password: "x",
		ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)

	// Field wajib kosong.
	req := httptest.NewRequest("POST", "/wallet/purchase/verify",
		bytes.NewReader([]byte(`{"package_id":"","order_ref":"","payment_ref":"","signature":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	// Signature salah.
	req = httptest.NewRequest("POST", "/wallet/purchase/verify",
		bytes.NewReader([]byte(`{"package_id":"x","order_ref":"ORD-1","payment_ref":"PAY-1","signature":"salah"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
