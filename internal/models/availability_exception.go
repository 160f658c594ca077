package models

import "time"

// AvailabilityException overrides the weekly rule for a single calendar date:
// either fully closed, or open with its own hours.
type AvailabilityException struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index:idx_exception_business_date,unique" json:"business_id"`

	Date string `gorm:"size:10;index:idx_exception_business_date,unique" json:"date"`

	Available bool   `json:"available"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	Reason string `gorm:"size:100" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
