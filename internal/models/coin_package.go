package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoinPackage is a purchasable coin bundle shown on the top-up page.
type CoinPackage struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Coins    int64     `gorm:"not null" json:"coins"`
	Price    int64     `gorm:"not null" json:"price"` // rupiah
	IsActive bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CoinPackage) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
