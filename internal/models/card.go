package models

// Card represents a credit line with a monthly billing cycle. ClosingDay and
// DueDay are configured days of month (1-31) and are clamped to the actual
// last day of the target month when concrete dates are computed.
type Card struct {
	Base
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	CreditLimit int64  `gorm:"type:bigint" json:"credit_limit"`
	ClosingDay  int    `gorm:"not null" json:"closing_day"`
	DueDay      int    `gorm:"not null" json:"due_day"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Invoices []Invoice `gorm:"foreignKey:CardID" json:"invoices,omitempty"`
}
