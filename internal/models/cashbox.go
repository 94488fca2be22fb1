package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIn  TransactionType = "in"  // money entering the account
	TransactionTypeOut TransactionType = "out" // money leaving the account
)

type TransactionSource string

const (
	TransactionSourceCash         TransactionSource = "cash"
	TransactionSourceMobile       TransactionSource = "mobile"
	TransactionSourceCheck        TransactionSource = "check"
	TransactionSourceDeposit      TransactionSource = "deposit"
	TransactionSourceBankTransfer TransactionSource = "bank_transfer"
	TransactionSourceOther        TransactionSource = "other"
)

// Cashbox: cash float with a running balance
type Cashbox struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Prefix         string          `gorm:"size:10;uniqueIndex;not null" json:"prefix"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"current_balance"`
	Description    string          `gorm:"size:255" json:"description"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CashboxTransaction is immutable once written.
type CashboxTransaction struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TransactionNumber string            `gorm:"size:20;uniqueIndex;not null" json:"transaction_number"`
	CashboxID         uint              `gorm:"index;not null" json:"cashbox_id"`
	Type              TransactionType   `gorm:"size:10;not null" json:"transaction_type"`
	Source            TransactionSource `gorm:"size:20;not null" json:"source"`
	Amount            decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	BalanceAfter      decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"balance_after"`
	Date              time.Time         `gorm:"index;not null" json:"date"`
	Description       string            `gorm:"size:255" json:"description"`
	Reference         string            `gorm:"size:50;index" json:"reference"` // e.g. purchase order number
	CreatedByID       *uint             `json:"created_by_id"`
	CreatedAt         time.Time         `json:"created_at"`
}
