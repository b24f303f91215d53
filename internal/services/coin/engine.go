package coin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
)

// Engine is the only code path that may touch a coin balance. Every mutation runs
// a read-check-update-log sequence inside one DB transaction: the balance column
// and the ledger entry either both commit or neither does.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// MutationResult is the snapshot returned by Debit/Credit.
type MutationResult struct {
	Entry         models.CoinTransaction
	BalanceBefore int64
	BalanceAfter  int64
}

// RelatedEntity tags a ledger entry with the business record it paid for.
type RelatedEntity struct {
	ID   uuid.UUID
	Kind string
}

// CreditParams carries everything a credit entry needs. Kind disambiguates the
// audit trail (purchase / refund / referral_reward), not the control flow.
type CreditParams struct {
	Amount      int64
	Kind        models.CoinTrxKind
	Description string
	Status      models.CoinTrxStatus // kosong = success

	// Purchase only.
	Price          int64
	OrderRef       string
	PaymentRef     string
	GatewayPayload datatypes.JSON

	Related *RelatedEntity
}

// Debit deducts amount coins in its own transaction.
func (e *Engine) Debit(ctx context.Context, ref models.AccountRef, amount int64, description string, related *RelatedEntity) (*MutationResult, error) {
	var res *MutationResult
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = e.DebitTx(tx, ref, amount, description, related)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DebitTx deducts amount coins inside an already-open transaction. The caller of
// that transaction owns commit/rollback.
func (e *Engine) DebitTx(tx *gorm.DB, ref models.AccountRef, amount int64, description string, related *RelatedEntity) (*MutationResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	balance, err := loadBalance(tx, ref)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, &InsufficientBalanceError{Required: amount, Available: balance}
	}

	// Guarded update: the WHERE clause re-checks the balance at write time, so two
	// concurrent debits can never both pass on the same coins.
	result := balanceQuery(tx, ref).
		Where("coin_balance >= ?", amount).
		Update("coin_balance", gorm.Expr("coin_balance - ?", amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Kalah balapan dengan debit lain: baca ulang supaya angka shortage akurat.
		current, readErr := loadBalance(tx, ref)
		if readErr != nil {
			return nil, readErr
		}
		return nil, &InsufficientBalanceError{Required: amount, Available: current}
	}

	after, err := loadBalance(tx, ref)
	if err != nil {
		return nil, err
	}

	entry := models.CoinTransaction{
		ID:           uuid.New(),
		AccountID:    ref.ID,
		AccountType:  ref.Type,
		Kind:         models.CoinTrxDeduction,
		Amount:       -amount,
		Status:       models.CoinTrxStatusSuccess,
		Description:  description,
		BalanceAfter: after,
	}
	if related != nil {
		entry.RelatedID = &related.ID
		entry.RelatedKind = related.Kind
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &MutationResult{Entry: entry, BalanceBefore: after + amount, BalanceAfter: after}, nil
}

// Credit adds amount coins in its own transaction.
func (e *Engine) Credit(ctx context.Context, ref models.AccountRef, p CreditParams) (*MutationResult, error) {
	var res *MutationResult
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = e.CreditTx(tx, ref, p)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CreditTx adds amount coins inside an already-open transaction.
func (e *Engine) CreditTx(tx *gorm.DB, ref models.AccountRef, p CreditParams) (*MutationResult, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Kind == "" {
		return nil, errors.New("credit kind is required")
	}
	status := p.Status
	if status == "" {
		status = models.CoinTrxStatusSuccess
	}

	result := balanceQuery(tx, ref).
		Update("coin_balance", gorm.Expr("coin_balance + ?", p.Amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}

	after, err := loadBalance(tx, ref)
	if err != nil {
		return nil, err
	}

	entry := models.CoinTransaction{
		ID:             uuid.New(),
		AccountID:      ref.ID,
		AccountType:    ref.Type,
		Kind:           p.Kind,
		Amount:         p.Amount,
		Status:         status,
		Description:    p.Description,
		Price:          p.Price,
		OrderRef:       p.OrderRef,
		GatewayPayload: p.GatewayPayload,
		BalanceAfter:   after,
	}
	if p.PaymentRef != "" {
		paymentRef := p.PaymentRef
		entry.PaymentRef = &paymentRef
	}
	if p.Related != nil {
		entry.RelatedID = &p.Related.ID
		entry.RelatedKind = p.Related.Kind
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &MutationResult{Entry: entry, BalanceBefore: after - p.Amount, BalanceAfter: after}, nil
}

// GetBalance reads the current balance without mutating anything.
func (e *Engine) GetBalance(ctx context.Context, ref models.AccountRef) (int64, error) {
	return loadBalance(e.DB.WithContext(ctx), ref)
}

// BalanceCheck is the result of CheckBalance.
type BalanceCheck struct {
	Sufficient bool  `json:"sufficient"`
	Current    int64 `json:"current"`
	Shortage   int64 `json:"shortage"`
}

// CheckBalance tells whether the account can afford required coins. Purely
// advisory: the guarded update in DebitTx remains the source of truth.
func (e *Engine) CheckBalance(ctx context.Context, ref models.AccountRef, required int64) (*BalanceCheck, error) {
	current, err := e.GetBalance(ctx, ref)
	if err != nil {
		return nil, err
	}
	check := &BalanceCheck{Sufficient: current >= required, Current: current}
	if !check.Sufficient {
		check.Shortage = required - current
	}
	return check, nil
}

func balanceQuery(tx *gorm.DB, ref models.AccountRef) *gorm.DB {
	switch ref.Type {
	case models.AccountRecruiter:
		return tx.Model(&models.Recruiter{}).Where("id = ?", ref.ID)
	default:
		return tx.Model(&models.JobSeeker{}).Where("id = ?", ref.ID)
	}
}

func loadBalance(tx *gorm.DB, ref models.AccountRef) (int64, error) {
	if !ref.Valid() {
		return 0, ErrAccountNotFound
	}

	var balance int64
	var err error
	switch ref.Type {
	case models.AccountJobSeeker:
		var acc models.JobSeeker
		err = tx.Select("id", "coin_balance").Take(&acc, "id = ?", ref.ID).Error
		balance = acc.CoinBalance
	case models.AccountRecruiter:
		var acc models.Recruiter
		err = tx.Select("id", "coin_balance").Take(&acc, "id = ?", ref.ID).Error
		balance = acc.CoinBalance
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}
