package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/services/referral"
)

type ReferralHandler struct {
	Referrals *referral.Processor
}

func NewReferralHandler(processor *referral.Processor) *ReferralHandler {
	return &ReferralHandler{Referrals: processor}
}

// ListMine returns the caller's referral records plus cumulative stats.
func (h *ReferralHandler) ListMine(c *fiber.Ctx) error {
	ref, err := accountRef(c)
	if err != nil {
		return err
	}

	records, err := h.Referrals.ListByReferrer(c.Context(), ref)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil data referral"})
	}

	var totalCoins int64
	rewarded := 0
	for _, r := range records {
		totalCoins += r.ReferrerCoinsAwarded
		if r.Status == models.ReferralStatusRewarded {
			rewarded++
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"referrals":    records,
			"total_coins":  totalCoins,
			"rewarded":     rewarded,
			"max_rewards":  h.Referrals.MaxRewards,
			"reward_coins": h.Referrals.ReferrerCoins,
		},
	})
}
