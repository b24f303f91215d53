package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/feegate"
)

type JobHandler struct {
	DB          *gorm.DB
	Coordinator *feegate.Coordinator
}

func NewJobHandler(db *gorm.DB, coordinator *feegate.Coordinator) *JobHandler {
	return &JobHandler{DB: db, Coordinator: coordinator}
}

type CreateJobReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	City        string `json:"city"`
	SalaryMin   int64  `json:"salary_min"`
	SalaryMax   int64  `json:"salary_max"`
}

// CreateJob posts a vacancy. Posting costs coins: the job row and the deduction
// go through the fee-gate coordinator so they stand or fall together.
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}
	if ref.Type != models.AccountRecruiter {
		return c.Status(403).JSON(fiber.Map{"success": false, "message": "Hanya perekrut yang bisa memasang loker"})
	}

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Judul loker wajib diisi"})
	}

	var job models.Job
	result, err := h.Coordinator.Run(c.Context(), ref, feegate.Action{
		Type:        feegate.ActionPostJob,
		Kind:        "job",
		Description: "Biaya pasang loker: " + strings.TrimSpace(req.Title),
		Perform: func(db *gorm.DB) (uuid.UUID, error) {
			job = models.Job{
				RecruiterID: ref.ID,
				Title:       strings.TrimSpace(req.Title),
				Description: req.Description,
				City:        req.City,
				SalaryMin:   req.SalaryMin,
				SalaryMax:   req.SalaryMax,
				Status:      models.JobStatusOpen,
			}
			if err := db.Create(&job).Error; err != nil {
				return uuid.Nil, err
			}
			return job.ID, nil
		},
		Rollback: func(db *gorm.DB, id uuid.UUID) error {
			return db.Delete(&models.Job{}, "id = ?", id).Error
		},
	})
	if err != nil {
		return respondCoinError(c, err)
	}

	data := fiber.Map{"job": job}
	if result.Debit != nil {
		data["balance"] = result.Debit.BalanceAfter
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Loker berhasil dipasang",
		"data":    data,
	})
}

func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID loker tidak valid"})
	}

	var job models.Job
	if err := h.DB.Preload("Recruiter").First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Loker tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	return c.JSON(fiber.Map{"success": true, "data": job})
}

func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	var jobs []models.Job
	if err := h.DB.Where("recruiter_id = ?", ref.ID).Order("created_at desc").Find(&jobs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil daftar loker"})
	}

	return c.JSON(fiber.Map{"success": true, "data": jobs})
}
