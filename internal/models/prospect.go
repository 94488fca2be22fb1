package models

import "time"

type ProspectStatus string

const (
	ProspectStatusNew        ProspectStatus = "new"
	ProspectStatusContacted  ProspectStatus = "contacted"
	ProspectStatusQualified  ProspectStatus = "qualified"
	ProspectStatusRelaunched ProspectStatus = "relaunched"
	ProspectStatusConverted  ProspectStatus = "converted"
	ProspectStatusLost       ProspectStatus = "lost"
)

// Prospect: sales pipeline contact, status may move freely
type Prospect struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Company   string         `gorm:"size:200" json:"company"`
	Email     string         `gorm:"size:191" json:"email"`
	Phone     string         `gorm:"size:17" json:"phone"`
	Source    string         `gorm:"size:100" json:"source"`
	Status    ProspectStatus `gorm:"size:20;index;not null" json:"status"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
