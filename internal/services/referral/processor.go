package referral

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
)

var (
	ErrInvalidCode  = errors.New("referral code not found")
	ErrSelfReferral = errors.New("cannot refer your own account")
)

// Processor awards referral coins when a new account registers with a valid code.
// State machine per referral: pending -> completed -> rewarded, or failed when the
// code is bogus / points back at the referee.
type Processor struct {
	DB     *gorm.DB
	Engine *coin.Engine

	ReferrerCoins int64
	RefereeCoins  int64
	// MaxRewards 0 berarti tanpa batas.
	MaxRewards int
}

func NewProcessor(db *gorm.DB, engine *coin.Engine, referrerCoins, refereeCoins int64, maxRewards int) *Processor {
	return &Processor{
		DB:            db,
		Engine:        engine,
		ReferrerCoins: referrerCoins,
		RefereeCoins:  refereeCoins,
		MaxRewards:    maxRewards,
	}
}

// Result reports what happened to one referral.
type Result struct {
	Referral models.Referral
	Rewarded bool
}

// ProcessReferral consumes code for a freshly registered account. The credit goes
// through the mutation engine; the referral row, the referrer's counter, and the
// ledger entry commit in one transaction.
func (p *Processor) ProcessReferral(ctx context.Context, code string, referee models.AccountRef) (*Result, error) {
	referrer, err := p.findReferrer(ctx, code)
	if err != nil {
		return nil, err
	}

	if referrer.Ref.ID == referee.ID {
		rec := models.Referral{
			ReferrerID:   referrer.Ref.ID,
			ReferrerType: referrer.Ref.Type,
			RefereeID:    referee.ID,
			RefereeType:  referee.Type,
			ReferralCode: code,
			Status:       models.ReferralStatusFailed,
		}
		if createErr := p.DB.WithContext(ctx).Create(&rec).Error; createErr != nil {
			return nil, createErr
		}
		return &Result{Referral: rec}, ErrSelfReferral
	}

	var out Result
	err = p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.Referral{
			ReferrerID:   referrer.Ref.ID,
			ReferrerType: referrer.Ref.Type,
			RefereeID:    referee.ID,
			RefereeType:  referee.Type,
			ReferralCode: code,
			Status:       models.ReferralStatusPending,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		// Cap lifetime: kalau sudah penuh, referral selesai tanpa koin.
		if p.MaxRewards > 0 && referrer.Count >= p.MaxRewards {
			rec.Status = models.ReferralStatusCompleted
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
			log.Printf("referral: cap reached for %s (%d), no reward", referrer.Ref.ID, referrer.Count)
			out = Result{Referral: rec}
			return nil
		}

		if _, err := p.Engine.CreditTx(tx, referrer.Ref, coin.CreditParams{
			Amount:      p.ReferrerCoins,
			Kind:        models.CoinTrxReferralReward,
			Description: fmt.Sprintf("Bonus referral kode %s", code),
			Related:     &coin.RelatedEntity{ID: rec.ID, Kind: "referral"},
		}); err != nil {
			return err
		}

		if err := incrementReferralCount(tx, referrer.Ref); err != nil {
			return err
		}

		rec.Status = models.ReferralStatusRewarded
		rec.ReferrerCoinsAwarded = p.ReferrerCoins

		// Bonus daftar untuk akun baru, kalau dikonfigurasi.
		if p.RefereeCoins > 0 {
			if _, err := p.Engine.CreditTx(tx, referee, coin.CreditParams{
				Amount:      p.RefereeCoins,
				Kind:        models.CoinTrxReferralReward,
				Description: "Bonus daftar dengan kode referral",
				Related:     &coin.RelatedEntity{ID: rec.ID, Kind: "referral"},
			}); err != nil {
				return err
			}
			rec.RefereeCoinsAwarded = p.RefereeCoins
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = Result{Referral: rec, Rewarded: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByReferrer returns the referral records an account has accumulated.
func (p *Processor) ListByReferrer(ctx context.Context, ref models.AccountRef) ([]models.Referral, error) {
	var records []models.Referral
	err := p.DB.WithContext(ctx).
		Where("referrer_id = ? AND referrer_type = ?", ref.ID, ref.Type).
		Order("created_at desc").
		Find(&records).Error
	return records, err
}

type referrerInfo struct {
	Ref   models.AccountRef
	Count int
}

func (p *Processor) findReferrer(ctx context.Context, code string) (*referrerInfo, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}

	var js models.JobSeeker
	err := p.DB.WithContext(ctx).Where("referral_code = ?", code).First(&js).Error
	if err == nil {
		return &referrerInfo{
			Ref:   models.AccountRef{ID: js.ID, Type: models.AccountJobSeeker},
			Count: js.ReferralCount,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var rec models.Recruiter
	err = p.DB.WithContext(ctx).Where("referral_code = ?", code).First(&rec).Error
	if err == nil {
		return &referrerInfo{
			Ref:   models.AccountRef{ID: rec.ID, Type: models.AccountRecruiter},
			Count: rec.ReferralCount,
		}, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCode
	}
	return nil, err
}

func incrementReferralCount(tx *gorm.DB, ref models.AccountRef) error {
	var result *gorm.DB
	switch ref.Type {
	case models.AccountRecruiter:
		result = tx.Model(&models.Recruiter{}).
			Where("id = ?", ref.ID).
			Update("referral_count", gorm.Expr("referral_count + 1"))
	default:
		result = tx.Model(&models.JobSeeker{}).
			Where("id = ?", ref.ID).
			Update("referral_count", gorm.Expr("referral_count + 1"))
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return coin.ErrAccountNotFound
	}
	return nil
}
