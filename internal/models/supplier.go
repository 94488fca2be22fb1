package models

import "time"

type SupplierCategory string

const (
	SupplierCategoryLogistics      SupplierCategory = "logistics"
	SupplierCategoryManufacturing  SupplierCategory = "manufacturing"
	SupplierCategoryMining         SupplierCategory = "mining"
	SupplierCategoryConstruction   SupplierCategory = "construction"
	SupplierCategoryAdministration SupplierCategory = "administration"
	SupplierCategoryFishFood       SupplierCategory = "fish_food"
	SupplierCategoryOther          SupplierCategory = "other"
)

// Supplier: accounting code 40XXXXXX. Status is active or suspended only.
type Supplier struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	AccountingCode string           `gorm:"size:8;uniqueIndex;not null" json:"accounting_code"`
	Name           string           `gorm:"size:200;not null" json:"name"`
	Category       SupplierCategory `gorm:"size:20;index;not null" json:"category"`
	TaxID          string           `gorm:"size:50" json:"tax_id"`
	TradeRegister  string           `gorm:"size:50" json:"trade_register"`
	PaymentTerms   int              `gorm:"not null" json:"payment_terms"` // days
	ContactPhone   string           `gorm:"size:17" json:"contact_phone"`
	Mobile         string           `gorm:"size:17" json:"mobile"`
	Email          string           `gorm:"size:191" json:"email"`
	Website        string           `gorm:"size:255" json:"website"`
	Address        string           `gorm:"type:text" json:"address"`
	City           string           `gorm:"size:100" json:"city"`
	Country        string           `gorm:"size:100" json:"country"`
	Status         PartnerStatus    `gorm:"size:20;index;not null" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
