package models

import "time"

type ClientType string

const (
	ClientTypeIndividual   ClientType = "individual"
	ClientTypeCompany      ClientType = "company"
	ClientTypeOrganization ClientType = "organization"
)

type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusInactive  PartnerStatus = "inactive" // clients only
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// Client: accounting code 41XXXXXX, assigned once at creation
type Client struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	AccountingCode string        `gorm:"size:8;uniqueIndex;not null" json:"accounting_code"`
	Name           string        `gorm:"size:200;not null" json:"name"`
	ClientType     ClientType    `gorm:"size:20;not null" json:"client_type"`
	Responsible    string        `gorm:"size:200" json:"responsible"`
	Mobile         string        `gorm:"size:17" json:"mobile"`
	Phone          string        `gorm:"size:17" json:"phone"`
	Email          string        `gorm:"size:191" json:"email"`
	Website        string        `gorm:"size:255" json:"website"`
	Address        string        `gorm:"type:text" json:"address"`
	City           string        `gorm:"size:100" json:"city"`
	PostalCode     string        `gorm:"size:20" json:"postal_code"`
	Country        string        `gorm:"size:100" json:"country"`
	TradeRegister  string        `gorm:"size:50" json:"trade_register"`
	TaxID          string        `gorm:"size:50" json:"tax_id"`
	Status         PartnerStatus `gorm:"size:20;index;not null" json:"status"`
	Observations   string        `gorm:"type:text" json:"observations"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
