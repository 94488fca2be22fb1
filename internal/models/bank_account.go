package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount: bank-held account, identifier BNKXXXXXX
type BankAccount struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Identifier     string          `gorm:"size:12;uniqueIndex;not null" json:"identifier"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	BankName       string          `gorm:"size:100" json:"bank_name"`
	AccountNumber  string          `gorm:"size:50" json:"account_number"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"current_balance"`
	Description    string          `gorm:"size:255" json:"description"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
