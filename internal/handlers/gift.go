package handlers

import (
	"spark/internal/services/wallet"
	"spark/internal/utils"
	"spark/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type GiftHandler struct {
	walletService wallet.Service
}

func NewGiftHandler(walletService wallet.Service) *GiftHandler {
	return &GiftHandler{walletService: walletService}
}

// SendGift handles POST /api/gifts.
func (h *GiftHandler) SendGift(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ReceiverID uint          `json:"receiver_id"`
		GiftKind   string        `json:"gift_kind"`
		Amount     decimalString `json:"amount"`
		Message    *string       `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	v := validation.New()
	v.ID("receiver_id", input.ReceiverID)
	v.Required("gift_kind", input.GiftKind)
	v.MaxLength("gift_kind", input.GiftKind, validation.MaxGiftKindLength)
	v.Required("amount", input.Amount.String())
	if input.Message != nil {
		v.MaxLength("message", *input.Message, validation.MaxMessageLength)
	}
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	res, err := h.walletService.SendGift(c.UserContext(), wallet.GiftRequest{
		SenderID:   claims.UserID,
		ReceiverID: input.ReceiverID,
		GiftKind:   input.GiftKind,
		Amount:     input.Amount.String(),
		Message:    input.Message,
	})
	if err != nil {
		return handleError(c, err)
	}
	return utils.Created(c, res)
}
