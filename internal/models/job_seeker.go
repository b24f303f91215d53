package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobSeeker struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone string    `gorm:"type:varchar(30)" json:"phone"`

	Password string `gorm:"not null" json:"-"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Headline string `gorm:"type:varchar(120)" json:"headline"`
	City     string `gorm:"type:varchar(60)" json:"city"`

	// Saldo koin. Hanya boleh diubah lewat coin.Engine.
	CoinBalance int64 `gorm:"not null;default:0" json:"coin_balance"`

	ReferralCode  string `gorm:"uniqueIndex;size:10" json:"referral_code"`
	ReferralCount int    `gorm:"not null;default:0" json:"referral_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *JobSeeker) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
