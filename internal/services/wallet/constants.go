package wallet

import "time"

// Operation names used for metrics and logs.
const (
	OpGetBalance    = "get_balance"
	OpHistory       = "history"
	OpTransfer      = "transfer"
	OpSuperLike     = "super_like"
	OpAdminTransfer = "admin_transfer"
	OpDeposit       = "deposit"
	OpAdminDeposit  = "admin_deposit"
	OpSendGift      = "send_gift"
)

// History paging
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Post-commit side effects run detached from the request context.
const sideEffectTimeout = 2 * time.Second
