package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ClassificationStatus string

const (
	ClassificationStatusDraft     ClassificationStatus = "draft"
	ClassificationStatusValidated ClassificationStatus = "validated"
	ClassificationStatusInTunnel  ClassificationStatus = "in_tunnel"
	ClassificationStatusCompleted ClassificationStatus = "completed"
	ClassificationStatusCancelled ClassificationStatus = "cancelled"
)

// Classification: per species breakdown of an accepted reception
type Classification struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	ReceptionID      uint                 `gorm:"index;not null" json:"reception_id"`
	Reception        *Reception           `json:"reception,omitempty"`
	PointerFullName  string               `gorm:"size:200;not null" json:"pointer_full_name"`
	ReferenceChambre string               `gorm:"size:100;not null" json:"reference_chambre"` // cold room
	StartDatetime    time.Time            `gorm:"index;not null" json:"start_datetime"`
	EndDatetime      *time.Time           `json:"end_datetime"`
	TunnelIn         *time.Time           `json:"tunnel_in"`
	TunnelOut        *time.Time           `json:"tunnel_out"`
	Status           ClassificationStatus `gorm:"size:20;index;not null" json:"status"`
	Observations     string               `gorm:"type:text" json:"observations"`
	CreatedByID      *uint                `json:"created_by_id"`
	Items            []ClassificationItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// ClassificationItem: one species row. SpeciesKey makes (classification, species)
// unique whether the species is a sub category or a free text tag.
type ClassificationItem struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	ClassificationID uint                `gorm:"uniqueIndex:idx_classification_species;not null" json:"classification_id"`
	SpeciesKey       string              `gorm:"size:120;uniqueIndex:idx_classification_species;not null" json:"-"`
	SpeciesID        *uint               `gorm:"index" json:"species_id"`
	Species          *ServiceSubCategory `json:"species,omitempty"`
	SpeciesTag       string              `gorm:"size:100" json:"species_tag"`
	Weight           decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"weight"`
	PlateCount       int                 `gorm:"not null" json:"plate_count"` // 0 = not counted
	Position         int                 `json:"position"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func (c *Classification) IsEditable() bool {
	return c.Status == ClassificationStatusDraft
}

func (c *Classification) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Weight)
	}
	return total
}

func (c *Classification) TotalPlates() int {
	total := 0
	for _, it := range c.Items {
		total += it.PlateCount
	}
	return total
}

// Duration is nil until both endpoints are known.
func (c *Classification) Duration() *time.Duration {
	if c.EndDatetime == nil || c.StartDatetime.IsZero() {
		return nil
	}
	d := c.EndDatetime.Sub(c.StartDatetime)
	return &d
}

func (c *Classification) TunnelDuration() *time.Duration {
	if c.TunnelIn == nil || c.TunnelOut == nil {
		return nil
	}
	d := c.TunnelOut.Sub(*c.TunnelIn)
	return &d
}

func (it *ClassificationItem) AverageWeightPerPlate() decimal.Decimal {
	if it.PlateCount == 0 {
		return decimal.Zero.Round(2)
	}
	return it.Weight.Div(decimal.NewFromInt(int64(it.PlateCount))).Round(2)
}

// SpeciesKeyFor builds the value stored in ClassificationItem.SpeciesKey.
func SpeciesKeyFor(speciesID *uint, tag string) string {
	if speciesID != nil {
		return fmt.Sprintf("sub:%d", *speciesID)
	}
	return "tag:" + tag
}

// FormatDuration renders a duration as "2h05min"; nil stays nil.
func FormatDuration(d *time.Duration) *string {
	if d == nil {
		return nil
	}
	total := int64(d.Minutes())
	s := fmt.Sprintf("%dh%02dmin", total/60, total%60)
	return &s
}
