package models

import (
	"time"
)

// TransactionType is the kind of ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeTransfer   TransactionType = "Transfer"
	TransactionTypeSuperLike  TransactionType = "SuperLike"
)

// Valid reports whether t is one of the known ledger entry types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypeSuperLike:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry. A nil FromWalletID marks an
// external deposit; a nil ToWalletID marks an external withdrawal.
// Amount and FeeAmount are human-unit decimal strings, e.g. "2.50000000".
type Transaction struct {
	ID                    uint            `gorm:"primarykey" json:"id"`
	FromWalletID          *uint           `gorm:"index" json:"from_wallet_id"`
	ToWalletID            *uint           `gorm:"index" json:"to_wallet_id"`
	Amount                string          `gorm:"type:decimal(38,8);not null" json:"amount"`
	FeeAmount             string          `gorm:"type:decimal(38,8);not null;default:0" json:"fee_amount"`
	Type                  TransactionType `gorm:"type:varchar(16);not null;index" json:"type"`
	ProviderTransactionID *string         `gorm:"type:varchar(255);uniqueIndex" json:"provider_transaction_id,omitempty"`
	CreatedAt             time.Time       `gorm:"index" json:"created_at"`
}
