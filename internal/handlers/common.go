package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
)

// accountRef rebuilds the caller's AccountRef from the JWT locals set by the
// auth middleware.
func accountRef(c *fiber.Ctx) (models.AccountRef, error) {
	rawID, _ := c.Locals("userId").(string)
	rawRole, _ := c.Locals("role").(string)

	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.AccountRef{}, fiber.ErrUnauthorized
	}

	ref := models.AccountRef{ID: id, Type: models.AccountType(rawRole)}
	if !ref.Valid() {
		return models.AccountRef{}, fiber.ErrUnauthorized
	}
	return ref, nil
}

// respondCoinError maps wallet errors to the response envelope. Insufficient
// balance carries the shortage so the frontend can prompt a top-up.
func respondCoinError(c *fiber.Ctx, err error) error {
	if ib, ok := coin.AsInsufficientBalance(err); ok {
		return c.Status(402).JSON(fiber.Map{
			"success": false,
			"message": "Koin tidak cukup",
			"data": fiber.Map{
				"required":  ib.Required,
				"available": ib.Available,
				"shortage":  ib.Shortage(),
			},
		})
	}
	if errors.Is(err, coin.ErrAccountNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Akun tidak ditemukan"})
	}
	log.Printf("wallet error: %v", err)
	return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
}
