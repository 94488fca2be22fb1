package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionCreate         AuditAction = "create"
	AuditActionUpdate         AuditAction = "update"
	AuditActionDelete         AuditAction = "delete"
	AuditActionStatusChange   AuditAction = "status_change"
	AuditActionLogin          AuditAction = "login"
	AuditActionLogout         AuditAction = "logout"
	AuditActionPasswordChange AuditAction = "password_change"
)

// AuditLog is append-only: rows are never updated or deleted by the application.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Who?
	UserID   *uint  `gorm:"index" json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // denormalized

	// On what? (e.g. "reception", "classification", "purchase_order")
	TargetType string `gorm:"size:50;index" json:"target_type"`
	TargetID   uint   `gorm:"index" json:"target_id"`

	Action  AuditAction `gorm:"size:30;index" json:"action"`
	Details string      `gorm:"type:text" json:"details"`

	IPAddress string `gorm:"size:45" json:"ip_address"`
	UserAgent string `gorm:"type:text" json:"user_agent"`
	RequestID string `gorm:"size:36" json:"request_id"`

	// State before and after the change
	BeforeData datatypes.JSON `json:"before_data"`
	AfterData  datatypes.JSON `json:"after_data"`
}
