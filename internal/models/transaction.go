package models

import "time"

// TransactionKind represents the direction of a transaction
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// PaymentMethod represents how a transaction was paid
type PaymentMethod string

const (
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodDebit    PaymentMethod = "debit"
	PaymentMethodCredit   PaymentMethod = "credit"
)

// TransactionOrigin tags how a transaction entered the ledger
type TransactionOrigin string

const (
	OriginManual    TransactionOrigin = "manual"
	OriginRecurring TransactionOrigin = "recurring"
	OriginShared    TransactionOrigin = "shared"
	OriginImported  TransactionOrigin = "imported"
)

// Transaction represents a single money movement. Amounts are stored in
// cents. Installment children reference the first installment through
// ParentID and carry a contiguous InstallmentIndex of 1..N. Recurring
// occurrences reference their template through TemplateID; the
// (template_id, reference_month) unique index is the duplicate-occurrence
// guard for concurrent generation.
type Transaction struct {
	Base
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	Description string            `gorm:"not null" json:"description"`
	Amount      int64             `gorm:"type:bigint;not null" json:"amount"`
	Kind        TransactionKind   `gorm:"not null" json:"kind"`
	Method      PaymentMethod     `gorm:"not null" json:"method"`
	Date        time.Time         `gorm:"not null;index" json:"date"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	CategoryID  *uint             `json:"category_id,omitempty"`
	CardID      *uint             `gorm:"index" json:"card_id,omitempty"`
	Paid        bool              `gorm:"default:false" json:"paid"`
	Origin      TransactionOrigin `gorm:"not null;default:manual" json:"origin"`

	// Installment metadata
	InstallmentsTotal int   `gorm:"default:1" json:"installments_total"`
	InstallmentIndex  int   `gorm:"default:1" json:"installment_index"`
	ParentID          *uint `gorm:"index" json:"parent_id,omitempty"`

	// Recurrence metadata
	TemplateID     *uint   `gorm:"uniqueIndex:idx_template_month" json:"template_id,omitempty"`
	ReferenceMonth *string `gorm:"uniqueIndex:idx_template_month;size:7" json:"reference_month,omitempty"`

	InvoiceID *uint `gorm:"index" json:"invoice_id,omitempty"`

	// Relationships
	Category *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Card     *Card              `gorm:"foreignKey:CardID" json:"card,omitempty"`
	Template *RecurringTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Splits   []Split            `gorm:"foreignKey:TransactionID" json:"splits,omitempty"`
}
