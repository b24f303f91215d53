package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
)

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrPackageNotFound  = errors.New("coin package not found")
)

// Gateway turns a signed payment confirmation into exactly one purchase credit,
// no matter how many times the gateway delivers the callback.
type Gateway struct {
	DB     *gorm.DB
	Engine *coin.Engine

	// Secret merchant dari dashboard payment gateway. Signature callback adalah
	// HMAC-SHA256(orderRef|paymentRef, secret) dalam hex.
	KeySecret string
}

func NewGateway(db *gorm.DB, engine *coin.Engine, keySecret string) *Gateway {
	return &Gateway{DB: db, Engine: engine, KeySecret: keySecret}
}

// PurchaseResult is what the callback handler returns to the gateway: the ledger
// entry and the balance right after it, identical on replays.
type PurchaseResult struct {
	Entry    models.CoinTransaction
	Balance  int64
	Replayed bool
}

// VerifyAndCreditPurchase validates the callback and credits the purchased
// package once. The idempotency key is paymentRef: a pre-check catches ordinary
// redeliveries, and the unique index on coin_transactions.payment_ref catches
// two callbacks racing past the pre-check together.
func (g *Gateway) VerifyAndCreditPurchase(
	ctx context.Context,
	buyer models.AccountRef,
	packageID, orderRef, paymentRef, signature string,
	payload datatypes.JSON,
) (*PurchaseResult, error) {
	if paymentRef == "" {
		return nil, ErrInvalidSignature
	}

	// 1. Replay path: kalau entry untuk paymentRef ini sudah ada, kembalikan
	// snapshot lama tanpa mutasi apapun.
	if existing, found, err := g.Engine.FindByPaymentRef(ctx, paymentRef); err != nil {
		return nil, err
	} else if found {
		log.Printf("payment: duplicate callback for %s, returning prior result", paymentRef)
		return &PurchaseResult{Entry: *existing, Balance: existing.BalanceAfter, Replayed: true}, nil
	}

	// 2. Verifikasi signature sebelum menyentuh apapun.
	if !g.VerifySignature(orderRef, paymentRef, signature) {
		log.Printf("payment: signature mismatch for order %s", orderRef)
		return nil, ErrInvalidSignature
	}

	// 3. Resolve paket yang dibeli.
	var pkg models.CoinPackage
	err := g.DB.WithContext(ctx).
		Where("id = ? AND is_active = ?", packageID, true).
		First(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}

	// 4. Kredit koin. Kind=purchase plus referensi gateway untuk audit.
	res, err := g.Engine.Credit(ctx, buyer, coin.CreditParams{
		Amount:         pkg.Coins,
		Kind:           models.CoinTrxPurchase,
		Description:    fmt.Sprintf("Pembelian paket %s (%d koin)", pkg.Name, pkg.Coins),
		Price:          pkg.Price,
		OrderRef:       orderRef,
		PaymentRef:     paymentRef,
		GatewayPayload: payload,
	})
	if err != nil {
		// Kalah balapan dengan callback kembarannya: unique index menolak entry
		// kedua, ambil hasil yang menang.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, found, findErr := g.Engine.FindByPaymentRef(ctx, paymentRef)
			if findErr != nil {
				return nil, findErr
			}
			if found {
				return &PurchaseResult{Entry: *existing, Balance: existing.BalanceAfter, Replayed: true}, nil
			}
		}
		return nil, err
	}

	return &PurchaseResult{Entry: res.Entry, Balance: res.BalanceAfter}, nil
}

// Sign computes the callback signature for orderRef|paymentRef. Exported so
// tests and the sandbox simulator can build valid callbacks.
func (g *Gateway) Sign(orderRef, paymentRef string) string {
	h := hmac.New(sha256.New, []byte(g.KeySecret))
	h.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Gateway) VerifySignature(orderRef, paymentRef, signature string) bool {
	expected := g.Sign(orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(signature))
}
