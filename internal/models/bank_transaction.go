package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction mirrors CashboxTransaction for bank accounts.
type BankTransaction struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TransactionNumber string            `gorm:"size:20;uniqueIndex;not null" json:"transaction_number"`
	BankAccountID     uint              `gorm:"index;not null" json:"bank_account_id"`
	Type              TransactionType   `gorm:"size:10;not null" json:"transaction_type"`
	Source            TransactionSource `gorm:"size:20;not null" json:"source"`
	Amount            decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	BalanceAfter      decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"balance_after"`
	Date              time.Time         `gorm:"index;not null" json:"date"`
	Description       string            `gorm:"size:255" json:"description"`
	Reference         string            `gorm:"size:50;index" json:"reference"`
	CreatedByID       *uint             `json:"created_by_id"`
	CreatedAt         time.Time         `json:"created_at"`
}
