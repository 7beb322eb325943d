package handlers

import (
	"strconv"

	"spark/internal/services/wallet"
	"spark/internal/utils"
	"spark/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminHandler exposes balance adjustments. Routes must be guarded by
// middleware.AdminAuthMiddleware.
type AdminHandler struct {
	walletService wallet.Service
}

func NewAdminHandler(walletService wallet.Service) *AdminHandler {
	return &AdminHandler{walletService: walletService}
}

// Deposit handles POST /api/admin/wallets/:userId/deposit.
func (h *AdminHandler) Deposit(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || targetID == 0 {
		return utils.BadRequest(c, "invalid user id")
	}

	var input struct {
		Amount decimalString `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	v := validation.New()
	v.Required("amount", input.Amount.String())
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	res, err := h.walletService.AdminDeposit(c.UserContext(), uint(targetID), input.Amount.String())
	if err != nil {
		return handleError(c, err)
	}
	h.audit(c, "admin deposit", logrus.Fields{
		"target_user_id": targetID,
		"transaction_id": res.TransactionID,
		"amount":         res.Amount,
	})
	return utils.Created(c, res)
}

// Transfer handles POST /api/admin/transfers.
func (h *AdminHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		FromUserID uint          `json:"from_user_id"`
		ToUserID   uint          `json:"to_user_id"`
		Amount     decimalString `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	v := validation.New()
	v.ID("from_user_id", input.FromUserID)
	v.ID("to_user_id", input.ToUserID)
	v.Required("amount", input.Amount.String())
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	res, err := h.walletService.AdminTransfer(c.UserContext(), input.FromUserID, input.ToUserID, input.Amount.String())
	if err != nil {
		return handleError(c, err)
	}
	h.audit(c, "admin transfer", logrus.Fields{
		"from_user_id":   input.FromUserID,
		"to_user_id":     input.ToUserID,
		"transaction_id": res.TransactionID,
		"amount":         res.Amount,
	})
	return utils.Created(c, res)
}

func (h *AdminHandler) audit(c *fiber.Ctx, msg string, fields logrus.Fields) {
	if claims, err := utils.GetUserClaims(c); err == nil {
		fields["admin_id"] = claims.UserID
	}
	logrus.WithFields(fields).Info(msg)
}
