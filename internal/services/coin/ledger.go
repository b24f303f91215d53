package coin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
)

// HistoryFilter narrows ListTransactions. Zero values mean "no filter".
type HistoryFilter struct {
	Kind   models.CoinTrxKind
	Status models.CoinTrxStatus
	Page   int
	Limit  int
}

// ListTransactions returns one page of the account's ledger, newest first, plus
// the total row count for the pagination envelope.
func (e *Engine) ListTransactions(ctx context.Context, ref models.AccountRef, f HistoryFilter) ([]models.CoinTransaction, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := e.DB.WithContext(ctx).
		Model(&models.CoinTransaction{}).
		Where("account_id = ? AND account_type = ?", ref.ID, ref.Type)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.CoinTransaction
	if err := q.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// FindByPaymentRef looks up the purchase entry committed for an external payment
// reference. Used by the gateway for the idempotent replay path.
func (e *Engine) FindByPaymentRef(ctx context.Context, paymentRef string) (*models.CoinTransaction, bool, error) {
	var entry models.CoinTransaction
	err := e.DB.WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &entry, true, nil
}
