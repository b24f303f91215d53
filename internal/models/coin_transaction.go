package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CoinTrxKind string

const (
	CoinTrxPurchase       CoinTrxKind = "purchase"        // Top up koin via payment gateway
	CoinTrxDeduction      CoinTrxKind = "deduction"       // Pembayaran aksi (lamaran, pasang loker)
	CoinTrxRefund         CoinTrxKind = "refund"          // Pengembalian koin
	CoinTrxReferralReward CoinTrxKind = "referral_reward" // Bonus referral
)

type CoinTrxStatus string

const (
	CoinTrxStatusPending  CoinTrxStatus = "pending"
	CoinTrxStatusSuccess  CoinTrxStatus = "success"
	CoinTrxStatusFailed   CoinTrxStatus = "failed"
	CoinTrxStatusRefunded CoinTrxStatus = "refunded"
)

// CoinTransaction is one immutable ledger entry. Amount is signed: positive for
// purchase/refund/referral_reward, negative for deduction. BalanceAfter is the
// balance snapshot right after the entry was committed, so the full history of an
// account folds to its current balance.
type CoinTransaction struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_coin_trx_account,priority:1" json:"account_id"`
	AccountType AccountType   `gorm:"type:varchar(20);not null;index:idx_coin_trx_account,priority:2" json:"account_type"`
	Kind        CoinTrxKind   `gorm:"type:varchar(30);not null" json:"kind"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Status      CoinTrxStatus `gorm:"type:varchar(20);not null;default:'success'" json:"status"`
	Description string        `gorm:"type:text" json:"description"`

	// Harga rupiah, hanya terisi untuk kind=purchase.
	Price int64 `gorm:"not null;default:0" json:"price,omitempty"`

	// Referensi payment gateway. PaymentRef adalah idempotency key: unique index
	// di level DB menutup celah double-credit saat callback duplikat datang bersamaan.
	OrderRef       string         `gorm:"type:varchar(64);index" json:"order_ref,omitempty"`
	PaymentRef     *string        `gorm:"type:varchar(64);uniqueIndex" json:"payment_ref,omitempty"`
	GatewayPayload datatypes.JSON `json:"gateway_payload,omitempty"`

	// Entitas bisnis yang dibayar entry ini (lamaran, loker, referral).
	RelatedID   *uuid.UUID `gorm:"type:uuid;index" json:"related_id,omitempty"`
	RelatedKind string     `gorm:"type:varchar(30)" json:"related_kind,omitempty"`

	BalanceAfter int64 `gorm:"not null" json:"balance_after"`

	CreatedAt time.Time `gorm:"index:idx_coin_trx_account,priority:3" json:"created_at"`
}

func (c *CoinTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
