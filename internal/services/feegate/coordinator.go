package feegate

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
)

type ActionType string

const (
	ActionApplyJob ActionType = "apply_job"
	ActionPostJob  ActionType = "post_job"
)

// Action couples one business record with the coins that pay for it. Perform
// creates the record and returns its id; Rollback must delete exactly that record
// and be safe to call more than once.
type Action struct {
	Type        ActionType
	Kind        string // related_kind di ledger, mis. "application"
	Description string
	Perform     func(db *gorm.DB) (uuid.UUID, error)
	Rollback    func(db *gorm.DB, id uuid.UUID) error
}

// Coordinator runs a fee-gated action: resolve the fee, pre-check the balance,
// perform the action, then debit. The action goes first on purpose so its own
// uniqueness constraints (one application per job per seeker) fire before any
// coins move; if the debit then fails, the record is rolled back.
type Coordinator struct {
	DB     *gorm.DB
	Engine *coin.Engine
	Fees   map[ActionType]int64
}

func NewCoordinator(db *gorm.DB, engine *coin.Engine, fees map[ActionType]int64) *Coordinator {
	return &Coordinator{DB: db, Engine: engine, Fees: fees}
}

// Fee returns the configured coin cost of an action type.
func (c *Coordinator) Fee(t ActionType) int64 {
	return c.Fees[t]
}

// Result of a successful fee-gated action.
type Result struct {
	RecordID uuid.UUID
	// Debit nil kalau aksinya gratis.
	Debit *coin.MutationResult
}

// Run executes act for actor. Either the business record and its deduction both
// stick, or neither does.
func (c *Coordinator) Run(ctx context.Context, actor models.AccountRef, act Action) (*Result, error) {
	fee := c.Fees[act.Type]

	db := c.DB.WithContext(ctx)

	// Aksi gratis: langsung jalan, tanpa debit.
	if fee <= 0 {
		id, err := act.Perform(db)
		if err != nil {
			return nil, err
		}
		return &Result{RecordID: id}, nil
	}

	check, err := c.Engine.CheckBalance(ctx, actor, fee)
	if err != nil {
		return nil, err
	}
	if !check.Sufficient {
		return nil, &coin.InsufficientBalanceError{Required: fee, Available: check.Current}
	}

	recordID, err := act.Perform(db)
	if err != nil {
		return nil, err
	}

	debit, err := c.Engine.Debit(ctx, actor, fee, act.Description,
		&coin.RelatedEntity{ID: recordID, Kind: act.Kind})
	if err != nil {
		// Kompensasi: hapus record yang sudah terlanjur dibuat. Kalau rollback-nya
		// sendiri gagal, dua-duanya harus sampai ke caller.
		if rbErr := act.Rollback(db, recordID); rbErr != nil {
			log.Printf("feegate: rollback of %s %s failed: %v", act.Kind, recordID, rbErr)
			return nil, fmt.Errorf("debit failed (%w) and rollback failed: %v", err, rbErr)
		}
		return nil, err
	}

	return &Result{RecordID: recordID, Debit: debit}, nil
}
