package models

import "time"

// Gift records a gift send. Each gift is backed by exactly one Transfer
// ledger entry written in the same database transaction.
type Gift struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	SenderID      uint         `gorm:"not null;index" json:"sender_id"`
	ReceiverID    uint         `gorm:"not null;index" json:"receiver_id"`
	GiftKind      string       `gorm:"type:varchar(128);not null" json:"gift_kind"`
	Amount        string       `gorm:"type:decimal(38,8);not null" json:"amount"`
	Message       *string      `gorm:"type:text" json:"message,omitempty"`
	TransactionID uint         `gorm:"not null;uniqueIndex" json:"transaction_id"`
	Transaction   *Transaction `gorm:"foreignKey:TransactionID" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
}
