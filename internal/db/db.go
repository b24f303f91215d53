package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection. TranslateError is on so unique-index
// violations surface as gorm.ErrDuplicatedKey (the payment gateway relies on it
// to detect duplicate callbacks that race past the pre-check).
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}
