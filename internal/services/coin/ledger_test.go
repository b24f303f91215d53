package coin_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
	"github.com/lokerhub/lokerhub-api/internal/testutil"
)

func TestListTransactionsPaginationAndFilters(t *testing.T) {
	gdb := testutil.NewDB(t)
	engine := coin.NewEngine(gdb)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	ref := seekerRef(acc.ID)
	other := testutil.NewJobSeeker(t, gdb, 0)

	for i := 0; i < 5; i++ {
		_, err := engine.Credit(ctx, ref, coin.CreditParams{
			Amount:      10,
			Kind:        models.CoinTrxPurchase,
			Description: fmt.Sprintf("topup %d", i),
		})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := engine.Debit(ctx, ref, 10, "potongan", nil)
		require.NoError(t, err)
	}
	// Milik akun lain tidak boleh ikut terbaca.
	_, err := engine.Credit(ctx, seekerRef(other.ID), coin.CreditParams{Amount: 99, Kind: models.CoinTrxPurchase})
	require.NoError(t, err)

	entries, total, err := engine.ListTransactions(ctx, ref, coin.HistoryFilter{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
	assert.Len(t, entries, 3)

	entries, total, err = engine.ListTransactions(ctx, ref, coin.HistoryFilter{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
	assert.Len(t, entries, 2)

	entries, total, err = engine.ListTransactions(ctx, ref, coin.HistoryFilter{Kind: models.CoinTrxDeduction})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, e := range entries {
		assert.Equal(t, models.CoinTrxDeduction, e.Kind)
		assert.Negative(t, e.Amount)
	}

	entries, total, err = engine.ListTransactions(ctx, ref, coin.HistoryFilter{Status: models.CoinTrxStatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	// Page/limit nyeleneh jatuh ke default.
	entries, _, err = engine.ListTransactions(ctx, ref, coin.HistoryFilter{Page: -1, Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}

func TestFindByPaymentRef(t *testing.T) {
	gdb := testutil.NewDB(t)
	engine := coin.NewEngine(gdb)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	ref := seekerRef(acc.ID)

	_, err := engine.Credit(ctx, ref, coin.CreditParams{
		Amount:     50,
		Kind:       models.CoinTrxPurchase,
		OrderRef:   "ORD-1",
		PaymentRef: "PAY-1",
	})
	require.NoError(t, err)

	entry, found, err := engine.FindByPaymentRef(ctx, "PAY-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ORD-1", entry.OrderRef)
	assert.Equal(t, int64(50), entry.Amount)

	_, found, err = engine.FindByPaymentRef(ctx, "PAY-404")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPaymentRefUniqueIndex(t *testing.T) {
	gdb := testutil.NewDB(t)
	engine := coin.NewEngine(gdb)
	ctx := context.Background()

	acc := testutil.NewJobSeeker(t, gdb, 0)
	ref := seekerRef(acc.ID)

	_, err := engine.Credit(ctx, ref, coin.CreditParams{Amount: 50, Kind: models.CoinTrxPurchase, PaymentRef: "PAY-DUP"})
	require.NoError(t, err)

	_, err = engine.Credit(ctx, ref, coin.CreditParams{Amount: 50, Kind: models.CoinTrxPurchase, PaymentRef: "PAY-DUP"})
	require.Error(t, err)

	// Kredit kedua batal total: saldo dan ledger tetap satu entry.
	balance, err := engine.GetBalance(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	var count int64
	require.NoError(t, gdb.Model(&models.CoinTransaction{}).
		Where("payment_ref = ?", "PAY-DUP").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// PaymentRef kosong boleh berulang kali (NULL tidak kena unique index).
	_, err = engine.Credit(ctx, ref, coin.CreditParams{Amount: 5, Kind: models.CoinTrxRefund})
	require.NoError(t, err)
	_, err = engine.Credit(ctx, ref, coin.CreditParams{Amount: 5, Kind: models.CoinTrxRefund})
	require.NoError(t, err)
}
