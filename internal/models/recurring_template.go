package models

import "time"

// RecurringFrequency represents how often a template materializes
type RecurringFrequency string

const (
	FrequencyMonthly   RecurringFrequency = "monthly"
	FrequencyQuarterly RecurringFrequency = "quarterly"
	FrequencyAnnual    RecurringFrequency = "annual"
)

// RecurringTemplate seeds monthly transaction occurrences. It is never
// itself spent; once generated occurrences reach MaxOccurrences (when set)
// the template is deactivated and no further generation occurs.
type RecurringTemplate struct {
	Base
	UserID         uint               `gorm:"not null;index" json:"user_id"`
	Description    string             `gorm:"not null" json:"description"`
	Amount         int64              `gorm:"type:bigint;not null" json:"amount"`
	Kind           TransactionKind    `gorm:"not null" json:"kind"`
	Method         PaymentMethod      `gorm:"not null;default:transfer" json:"method"`
	CategoryID     *uint              `json:"category_id,omitempty"`
	Frequency      RecurringFrequency `gorm:"not null;default:monthly" json:"frequency"`
	StartDate      time.Time          `gorm:"not null" json:"start_date"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	MaxOccurrences *int               `json:"max_occurrences,omitempty"`
	Active         bool               `gorm:"default:true" json:"active"`

	Category    *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Occurrences []Transaction `gorm:"foreignKey:TemplateID" json:"occurrences,omitempty"`
}
