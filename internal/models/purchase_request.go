package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseRequestStatus string

const (
	PurchaseRequestStatusDraft     PurchaseRequestStatus = "draft"
	PurchaseRequestStatusApproved  PurchaseRequestStatus = "approved"
	PurchaseRequestStatusRejected  PurchaseRequestStatus = "rejected"
	PurchaseRequestStatusCancelled PurchaseRequestStatus = "cancelled"
)

// PurchaseRequest: unpriced ask, number #PRMMYYNNNNNN
type PurchaseRequest struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	PRNumber        string                `gorm:"size:20;uniqueIndex;not null" json:"pr_number"`
	Title           string                `gorm:"size:200;not null" json:"title"`
	RequestDate     time.Time             `gorm:"type:date;not null" json:"request_date"`
	Status          PurchaseRequestStatus `gorm:"size:20;index;not null" json:"status"`
	RejectionReason string                `gorm:"type:text" json:"rejection_reason"`
	Notes           string                `gorm:"type:text" json:"notes"`
	RequestedByID   *uint                 `json:"requested_by_id"`
	PurchaseOrderID *uint                 `json:"purchase_order_id"` // set on approval
	Items           []PurchaseRequestItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type PurchaseRequestItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PurchaseRequestID uint            `gorm:"index;not null" json:"purchase_request_id"`
	Designation       string          `gorm:"size:255;not null" json:"designation"`
	Quantity          decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Unit              string          `gorm:"size:30;not null" json:"unit"`
	Position          int             `json:"position"`
}
