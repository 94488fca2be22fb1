package models

import "time"

// SequenceCounter holds the last value handed out for one identifier series
// (e.g. "lot_id", "po_number:1125").
type SequenceCounter struct {
	SeriesKey string `gorm:"primaryKey;size:64"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}
