package models

import "time"

const (
	ServiceCodeMin      = 1000
	ServiceCodeMax      = 9999
	ServiceCodeReserved = 1010 // 1000..1010 belong to the system
	// Receptions whose service code is above this value go through classification.
	ServiceCodeClassificationThreshold = 1003
)

type ServiceCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceSubCategory is the species dimension used by classification items.
type ServiceSubCategory struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CategoryID  uint             `gorm:"uniqueIndex:idx_subcategory_category_name;not null" json:"category_id"`
	Category    *ServiceCategory `json:"category,omitempty"`
	Name        string           `gorm:"size:200;uniqueIndex:idx_subcategory_category_name;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Service: billable operation with an immutable 4 digit code
type Service struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Code        int              `gorm:"uniqueIndex;not null" json:"code"`
	Name        string           `gorm:"size:200;not null" json:"name"`
	CategoryID  *uint            `gorm:"index" json:"category_id"`
	Category    *ServiceCategory `json:"category,omitempty"`
	Description string           `gorm:"type:text" json:"description"`
	IsSystem    bool             `json:"is_system"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (s *Service) RequiresClassification() bool {
	return s.Code > ServiceCodeClassificationThreshold
}
