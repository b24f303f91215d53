package payment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
	"github.com/lokerhub/lokerhub-api/internal/services/payment"
	"github.com/lokerhub/lokerhub-api/internal/testutil"
)

func newGateway(t *testing.T) (*gorm.DB, *coin.Engine, *payment.Gateway) {
	gdb := testutil.NewDB(t)
	engine := coin.NewEngine(gdb)
	return gdb, engine, payment.NewGateway(gdb, engine, "rahasia-merchant")
}

func newPackage(t *testing.T, gdb *gorm.DB, coins, price int64, active bool) models.CoinPackage {
	t.Helper()
	pkg := models.CoinPackage{
		ID:       uuid.New(),
		Name:     "Paket Reguler",
		Coins:    coins,
		Price:    price,
		IsActive: active,
	}
	require.NoError(t, gdb.Create(&pkg).Error)
	return pkg
}

func TestVerifyAndCreditPurchase(t *testing.T) {
	gdb, engine, gw := newGateway(t)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	buyer := models.AccountRef{ID: acc.ID, Type: models.AccountJobSeeker}
	pkg := newPackage(t, gdb, 120, 50000, true)

	payload := datatypes.JSON(`{"status":"captured"}`)
	sig := gw.Sign("ORD-1", "PAY-1")

	res, err := gw.VerifyAndCreditPurchase(ctx, buyer, pkg.ID.String(), "ORD-1", "PAY-1", sig, payload)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, int64(120), res.Balance)
	assert.Equal(t, models.CoinTrxPurchase, res.Entry.Kind)
	assert.Equal(t, int64(120), res.Entry.Amount)
	assert.Equal(t, int64(50000), res.Entry.Price)
	require.NotNil(t, res.Entry.PaymentRef)
	assert.Equal(t, "PAY-1", *res.Entry.PaymentRef)

	balance, err := engine.GetBalance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)
}

func TestVerifyAndCreditPurchaseReplay(t *testing.T) {
	gdb, engine, gw := newGateway(t)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	buyer := models.AccountRef{ID: acc.ID, Type: models.AccountJobSeeker}
	pkg := newPackage(t, gdb, 120, 50000, true)

	sig := gw.Sign("ORD-1", "PAY-1")
	first, err := gw.VerifyAndCreditPurchase(ctx, buyer, pkg.ID.String(), "ORD-1", "PAY-1", sig, nil)
	require.NoError(t, err)

	// Callback kembar: tanpa mutasi, snapshot sama persis.
	second, err := gw.VerifyAndCreditPurchase(ctx, buyer, pkg.ID.String(), "ORD-1", "PAY-1", sig, nil)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.Equal(t, first.Balance, second.Balance)

	balance, err := engine.GetBalance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)

	var count int64
	require.NoError(t, gdb.Model(&models.CoinTransaction{}).
		Where("payment_ref = ?", "PAY-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyAndCreditPurchaseBadSignature(t *testing.T) {
	gdb, engine, gw := newGateway(t)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	buyer := models.AccountRef{ID: acc.ID, Type: models.AccountJobSeeker}
	pkg := newPackage(t, gdb, 120, 50000, true)

	_, err := gw.VerifyAndCreditPurchase(ctx, buyer, pkg.ID.String(), "ORD-1", "PAY-1", "bukan-signature", nil)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	// PaymentRef kosong ditolak lebih dulu, sebelum apapun dicek.
	_, err = gw.VerifyAndCreditPurchase(ctx, buyer, pkg.ID.String(), "ORD-1", "", gw.Sign("ORD-1", ""), nil)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	balance, err := engine.GetBalance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	var count int64
	require.NoError(t, gdb.Model(&models.CoinTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVerifyAndCreditPurchasePackageNotFound(t *testing.T) {
	gdb, _, gw := newGateway(t)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	buyer := models.AccountRef{ID: acc.ID, Type: models.AccountJobSeeker}

	sig := gw.Sign("ORD-1", "PAY-1")
	_, err := gw.VerifyAndCreditPurchase(ctx, buyer, uuid.NewString(), "ORD-1", "PAY-1", sig, nil)
	assert.ErrorIs(t, err, payment.ErrPackageNotFound)

	// Paket nonaktif diperlakukan seperti tidak ada.
	inactive := newPackage(t, gdb, 50, 25000, false)
	_, err = gw.VerifyAndCreditPurchase(ctx, buyer, inactive.ID.String(), "ORD-1", "PAY-1", sig, nil)
	assert.ErrorIs(t, err, payment.ErrPackageNotFound)
}

func TestSignatureRoundTrip(t *testing.T) {
	_, _, gw := newGateway(t)

	sig := gw.Sign("ORD-9", "PAY-9")
	assert.True(t, gw.VerifySignature("ORD-9", "PAY-9", sig))
	assert.False(t, gw.VerifySignature("ORD-9", "PAY-8", sig))
	assert.False(t, gw.VerifySignature("ORD-9", "PAY-9", sig+"00"))

	other := payment.NewGateway(nil, nil, "secret-lain")
	assert.False(t, other.VerifySignature("ORD-9", "PAY-9", sig))
}
