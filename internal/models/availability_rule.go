package models

import "time"

// WeeklyAvailabilityRule is the recurring open/close window for one weekday.
// At most one row per (business, weekday); no row means closed that day.
type WeeklyAvailabilityRule struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index:idx_rule_business_weekday,unique" json:"business_id"`

	Weekday int `gorm:"index:idx_rule_business_weekday,unique" json:"weekday"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Available bool   `json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
