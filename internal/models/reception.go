package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReceptionStatus string

const (
	ReceptionStatusDraft      ReceptionStatus = "draft"
	ReceptionStatusAccepted   ReceptionStatus = "accepted"
	ReceptionStatusInProgress ReceptionStatus = "in_progress"
	ReceptionStatusCompleted  ReceptionStatus = "completed"
	ReceptionStatusSuspended  ReceptionStatus = "suspended"
	ReceptionStatusCancelled  ReceptionStatus = "cancelled"
)

// Reception: one lot of fish received from a client
type Reception struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LotID         string          `gorm:"size:20;uniqueIndex;not null" json:"lot_id"` // 000001, 000002, ...
	ClientID      uint            `gorm:"index;not null" json:"client_id"`
	Client        *Client         `json:"client,omitempty"`
	ReceptionDate time.Time       `gorm:"type:date;index;not null" json:"reception_date"`
	Weight        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"weight"` // kg
	ServiceID     uint            `gorm:"index;not null" json:"service_id"`
	Service       *Service        `json:"service,omitempty"`
	Status        ReceptionStatus `gorm:"size:20;index;not null" json:"status"`
	Observations  string          `gorm:"type:text" json:"observations"`
	CreatedByID   *uint           `json:"created_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r *Reception) IsEditable() bool {
	return r.Status == ReceptionStatusDraft
}

// IsLocked reports whether destructive edits are off limits.
func (r *Reception) IsLocked() bool {
	switch r.Status {
	case ReceptionStatusAccepted, ReceptionStatusInProgress, ReceptionStatusCompleted:
		return true
	}
	return false
}

func (r *Reception) CanBeClassified() bool {
	if r.Status != ReceptionStatusAccepted {
		return false
	}
	return r.Service == nil || r.Service.RequiresClassification()
}
