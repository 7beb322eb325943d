package models

import (
	"time"

	"spark/internal/money"
)

// Wallet holds a user's spendable balance in base units (value × 10^8).
// Balance is only written by the ledger services while the row is locked.
type Wallet struct {
	ID                    uint      `gorm:"primarykey" json:"id"`
	UserID                uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance               int64     `gorm:"not null;default:0;check:chk_wallets_balance_non_negative,balance >= 0" json:"balance"`
	WithdrawFeePercentage string    `gorm:"type:decimal(5,2);not null;default:0" json:"withdraw_fee_percentage"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Amount returns the balance as a money.Amount.
func (w *Wallet) Amount() money.Amount {
	return money.FromUnits(w.Balance)
}
