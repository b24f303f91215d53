package handlers

import (
	"errors"
	"log"
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/realtime"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
	"github.com/lokerhub/lokerhub-api/internal/services/payment"
)

type WalletHandler struct {
	DB       *gorm.DB
	Engine   *coin.Engine
	Gateway  *payment.Gateway
	Notifier *realtime.Notifier
}

func NewWalletHandler(db *gorm.DB, engine *coin.Engine, gateway *payment.Gateway, notifier *realtime.Notifier) *WalletHandler {
	return &WalletHandler{DB: db, Engine: engine, Gateway: gateway, Notifier: notifier}
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	balance, err := h.Engine.GetBalance(c.Context(), ref)
	if err != nil {
		if errors.Is(err, coin.ErrAccountNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Akun tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil saldo"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"balance": balance},
	})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	filter := coin.HistoryFilter{
		Page:   page,
		Limit:  limit,
		Kind:   models.CoinTrxKind(c.Query("kind")),
		Status: models.CoinTrxStatus(c.Query("status")),
	}

	entries, total, err := h.Engine.ListTransactions(c.Context(), ref, filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil riwayat koin"})
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"transactions": entries,
			"total":        total,
			"page":         page,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (h *WalletHandler) GetPackages(c *fiber.Ctx) error {
	var packages []models.CoinPackage
	if err := h.DB.Where("is_active = ?", true).Order("coins asc").Find(&packages).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil daftar paket"})
	}
	return c.JSON(fiber.Map{"success": true, "data": packages})
}

type VerifyPurchaseReq struct {
	PackageID  string `json:"package_id"`
	OrderRef   string `json:"order_ref"`
	PaymentRef string `json:"payment_ref"`
	Signature  string `json:"signature"`
}

// VerifyPurchase is the payment-confirmation endpoint. Safe to hit more than
// once with the same payment_ref: replays return the original result.
func (h *WalletHandler) VerifyPurchase(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	var req VerifyPurchaseReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}
	if req.PackageID == "" || req.OrderRef == "" || req.PaymentRef == "" || req.Signature == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Data pembayaran tidak lengkap"})
	}

	result, err := h.Gateway.VerifyAndCreditPurchase(
		c.Context(), ref,
		req.PackageID, req.OrderRef, req.PaymentRef, req.Signature,
		datatypes.JSON(c.Body()),
	)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Signature pembayaran tidak valid"})
		case errors.Is(err, payment.ErrPackageNotFound):
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Paket koin tidak ditemukan"})
		case errors.Is(err, coin.ErrAccountNotFound):
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Akun tidak ditemukan"})
		default:
			log.Printf("wallet: verify purchase failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal memproses pembayaran"})
		}
	}

	if !result.Replayed {
		h.Notifier.NotifyBalance(c.Context(), ref.ID, result.Balance)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"transaction": result.Entry,
			"balance":     result.Balance,
		},
	})
}
