package handlers

import (
	"context"

	"spark/internal/services/wallet"
	"spark/internal/utils"
	"spark/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetBalance handles GET /api/wallet.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	balance, err := h.walletService.GetBalance(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"user_id": claims.UserID,
		"balance": balance,
	})
}

// GetTransactions handles GET /api/wallet/transactions?page=&limit=.
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, wallet.DefaultHistoryLimit, wallet.MaxHistoryLimit)
	entries, err := h.walletService.GetTransactionHistory(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return handleError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(entries, p))
}

// Deposit handles POST /api/wallet/deposit. The Idempotency-Key header is
// used when the body carries no key.
func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount         decimalString `json:"amount"`
		Currency       string        `json:"currency"`
		PaymentMethod  string        `json:"payment_method"`
		IdempotencyKey string        `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	v := validation.New()
	v.Required("amount", input.Amount.String())
	v.Required("payment_method", input.PaymentMethod)
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	key := input.IdempotencyKey
	if key == "" {
		key = c.Get("Idempotency-Key")
	}

	res, err := h.walletService.Deposit(c.UserContext(), wallet.DepositRequest{
		UserID:         claims.UserID,
		Amount:         input.Amount.String(),
		Currency:       input.Currency,
		PaymentMethod:  input.PaymentMethod,
		IdempotencyKey: key,
	})
	if err != nil {
		return handleError(c, err)
	}
	if res.Replayed {
		return utils.Success(c, res)
	}
	return utils.Created(c, res)
}

type moveInput struct {
	ReceiverID uint          `json:"receiver_id"`
	Amount     decimalString `json:"amount"`
}

func (in moveInput) validate() *validation.Validator {
	v := validation.New()
	v.ID("receiver_id", in.ReceiverID)
	v.Required("amount", in.Amount.String())
	return v
}

// Transfer handles POST /api/wallet/transfer.
func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	return h.move(c, h.walletService.Transfer)
}

// SuperLike handles POST /api/wallet/super-like.
func (h *WalletHandler) SuperLike(c *fiber.Ctx) error {
	return h.move(c, h.walletService.SuperLike)
}

func (h *WalletHandler) move(c *fiber.Ctx, op func(ctx context.Context, from, to uint, amount string) (*wallet.TransferResult, error)) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input moveInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if v := input.validate(); !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	res, err := op(c.UserContext(), claims.UserID, input.ReceiverID, input.Amount.String())
	if err != nil {
		return handleError(c, err)
	}
	return utils.Created(c, res)
}
