package models

import "time"

// InvoiceStatus represents the lifecycle state of a persisted invoice.
// Forecast invoices are never persisted; they exist only as InvoiceView
// projections built by the invoice service. Transitions move forward only:
// open -> closed -> paid.
type InvoiceStatus string

const (
	InvoiceStatusOpen   InvoiceStatus = "open"
	InvoiceStatusClosed InvoiceStatus = "closed"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Invoice represents one monthly billing cycle for one card.
type Invoice struct {
	Base
	CardID         uint          `gorm:"not null;uniqueIndex:idx_card_month" json:"card_id"`
	ReferenceMonth string        `gorm:"not null;size:7;uniqueIndex:idx_card_month" json:"reference_month"`
	ClosingDate    time.Time     `gorm:"not null" json:"closing_date"`
	DueDate        time.Time     `gorm:"not null" json:"due_date"`
	TotalAmount    int64         `gorm:"type:bigint;default:0" json:"total_amount"`
	PaidAmount     int64         `gorm:"type:bigint;default:0" json:"paid_amount"`
	Status         InvoiceStatus `gorm:"not null;default:open" json:"status"`

	Card         Card             `gorm:"foreignKey:CardID" json:"card,omitempty"`
	Transactions []Transaction    `gorm:"foreignKey:InvoiceID" json:"transactions,omitempty"`
	Payments     []InvoicePayment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// InvoicePayment is an append-only record of a payment applied to an
// invoice. Partial and multiple payments are allowed; overpayment simply
// marks the invoice paid.
type InvoicePayment struct {
	Base
	InvoiceID uint          `gorm:"not null;index" json:"invoice_id"`
	Amount    int64         `gorm:"type:bigint;not null" json:"amount"`
	Method    PaymentMethod `gorm:"not null" json:"method"`
	Date      time.Time     `gorm:"not null" json:"date"`
}
