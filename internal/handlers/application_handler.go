package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/realtime"
	"github.com/lokerhub/lokerhub-api/internal/services/feegate"
)

type ApplicationHandler struct {
	DB          *gorm.DB
	Coordinator *feegate.Coordinator
	Notifier    *realtime.Notifier
}

func NewApplicationHandler(db *gorm.DB, coordinator *feegate.Coordinator, notifier *realtime.Notifier) *ApplicationHandler {
	return &ApplicationHandler{DB: db, Coordinator: coordinator, Notifier: notifier}
}

type ApplyReq struct {
	CoverNote string `json:"cover_note"`
}

// Apply submits an application to a job. The application fee is deducted through
// the fee-gate coordinator; a failed deduction rolls the application back.
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}
	if ref.Type != models.AccountJobSeeker {
		return c.Status(403).JSON(fiber.Map{"success": false, "message": "Hanya pencari kerja yang bisa melamar"})
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID loker tidak valid"})
	}

	var req ApplyReq
	_ = c.BodyParser(&req)

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Loker tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}
	if job.Status != models.JobStatusOpen {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Loker sudah ditutup"})
	}

	var app models.Application
	result, err := h.Coordinator.Run(c.Context(), ref, feegate.Action{
		Type:        feegate.ActionApplyJob,
		Kind:        "application",
		Description: "Biaya lamaran: " + job.Title,
		Perform: func(db *gorm.DB) (uuid.UUID, error) {
			app = models.Application{
				JobID:       job.ID,
				JobSeekerID: ref.ID,
				CoverNote:   req.CoverNote,
				Status:      models.ApplicationStatusSubmitted,
			}
			if err := db.Create(&app).Error; err != nil {
				return uuid.Nil, err
			}
			return app.ID, nil
		},
		Rollback: func(db *gorm.DB, id uuid.UUID) error {
			return db.Delete(&models.Application{}, "id = ?", id).Error
		},
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Kamu sudah melamar loker ini"})
		}
		return respondCoinError(c, err)
	}

	data := fiber.Map{"application": app}
	if result.Debit != nil {
		data["balance"] = result.Debit.BalanceAfter
		h.Notifier.NotifyBalance(c.Context(), ref.ID, result.Debit.BalanceAfter)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Lamaran terkirim",
		"data":    data,
	})
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	var apps []models.Application
	if err := h.DB.Preload("Job").
		Where("job_seeker_id = ?", ref.ID).
		Order("created_at desc").
		Find(&apps).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil daftar lamaran"})
	}

	return c.JSON(fiber.Map{"success": true, "data": apps})
}
