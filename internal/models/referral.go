package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"   // Kode dipakai saat daftar, belum diproses
	ReferralStatusCompleted ReferralStatus = "completed" // Lolos cek tapi cap sudah penuh, tanpa koin
	ReferralStatusRewarded  ReferralStatus = "rewarded"  // Koin sudah masuk ke referrer
	ReferralStatusFailed    ReferralStatus = "failed"    // Self-referral / tidak valid
)

type Referral struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ReferrerID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferrerType AccountType `gorm:"type:varchar(20);not null" json:"referrer_type"`
	RefereeID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"referee_id"`
	RefereeType  AccountType `gorm:"type:varchar(20);not null" json:"referee_type"`

	ReferralCode string         `gorm:"size:10;not null" json:"referral_code"`
	Status       ReferralStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	ReferrerCoinsAwarded int64 `gorm:"not null;default:0" json:"referrer_coins_awarded"`
	RefereeCoinsAwarded  int64 `gorm:"not null;default:0" json:"referee_coins_awarded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
