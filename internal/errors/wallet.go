package errors

var (
	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrSelfTransfer = &DomainError{
		Kind:    KindValidation,
		Code:    "SELF_TRANSFER",
		Message: "cannot transfer to self",
	}
	ErrInvalidCurrency = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_CURRENCY",
		Message: "unsupported currency",
	}
	ErrInvalidKind = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_KIND",
		Message: "unsupported operation kind",
	}
	ErrInvalidGift = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_GIFT",
		Message: "gift kind is required",
	}
	ErrIdempotencyKeyReused = &DomainError{
		Kind:    KindValidation,
		Code:    "IDEMPOTENCY_KEY_REUSED",
		Message: "idempotency key was already used for a different deposit",
	}

	ErrRecipientNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "RECIPIENT_NOT_FOUND",
		Message: "recipient not found",
	}
	ErrUserNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}

	ErrInsufficientBalance = &DomainError{
		Kind:    KindInsufficientBalance,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}

	ErrLockTimeout = &DomainError{
		Kind:    KindConcurrency,
		Code:    "LOCK_TIMEOUT",
		Message: "timed out waiting for wallet lock",
	}
	ErrConflict = &DomainError{
		Kind:    KindConcurrency,
		Code:    "CONFLICT",
		Message: "concurrent update conflict",
	}

	ErrPaymentDeclined = &DomainError{
		Kind:    KindUpstream,
		Code:    "PAYMENT_DECLINED",
		Message: "payment declined",
	}
)
