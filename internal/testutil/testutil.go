// Package testutil opens throwaway in-memory databases for service tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lokerhub/lokerhub-api/internal/models"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory SQLite database. One connection only, so
// concurrent transactions serialize the same way Postgres row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(
		&models.JobSeeker{},
		&models.Recruiter{},
		&models.CoinTransaction{},
		&models.CoinPackage{},
		&models.Referral{},
		&models.Job{},
		&models.Application{},
	))

	return gdb
}

// NewJobSeeker inserts a job seeker with the given starting balance.
func NewJobSeeker(t *testing.T, gdb *gorm.DB, balance int64) models.JobSeeker {
	t.Helper()

	acc := models.JobSeeker{
		ID:           uuid.New(),
		Name:         "Test Seeker",
		Email:        fmt.Sprintf("seeker-%s@example.com", uuid.NewString()[:8]),
		Password:     "x",
		IsActive:     true,
		CoinBalance:  balance,
		ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)
	return acc
}

// NewRecruiter inserts a recruiter with the given starting balance.
func NewRecruiter(t *testing.T, gdb *gorm.DB, balance int64) models.Recruiter {
	t.Helper()

	acc := models.Recruiter{
		ID:           uuid.New(),
		Name:         "Test Recruiter",
		Email:        fmt.Sprintf("recruiter-%s@example.com", uuid.NewString()[:8]),
		Password:     "x",
		IsActive:     true,
		CompanyName:  "PT Contoh",
		CoinBalance:  balance,
		ReferralCode: models.GenerateReferralCode(),
	}
	require.NoError(t, gdb.Create(&acc).Error)
	return acc
}

// NewJob inserts an open job owned by recruiterID.
func NewJob(t *testing.T, gdb *gorm.DB, recruiterID uuid.UUID) models.Job {
	t.Helper()

	job := models.Job{
		ID:          uuid.New(),
		RecruiterID: recruiterID,
		Title:       "Backend Engineer",
		Status:      models.JobStatusOpen,
	}
	require.NoError(t, gdb.Create(&job).Error)
	return job
}
