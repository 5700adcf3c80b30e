package services

import (
	"time"

	"gorm.io/gorm"

	"centavo/internal/models"
	"centavo/internal/pagination"
)

// CardServicer defines the contract for card-related business logic.
type CardServicer interface {
	CreateCard(userID uint, name string, creditLimit int64, closingDay, dueDay int) (*models.Card, error)
	GetUserCards(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error)
	GetCardByID(userID, cardID uint) (*models.Card, error)
	UpdateCard(userID, cardID uint, name string, creditLimit *int64, closingDay, dueDay *int) (*models.Card, error)
	DeactivateCard(userID, cardID uint) error
}

// TransactionInput carries the fields a creation request supplies for a new
// transaction. Amounts are in cents.
type TransactionInput struct {
	Description       string
	Amount            int64
	Kind              models.TransactionKind
	Method            models.PaymentMethod
	Date              time.Time
	DueDate           *time.Time
	CategoryID        *uint
	CardID            *uint
	InstallmentsTotal int
	Origin            models.TransactionOrigin
}

// MonthlyLedger is the result of the monthly ledger query: the month's
// transactions plus observability data about occurrences generated as a
// side effect of the read.
type MonthlyLedger struct {
	Transactions   []models.Transaction `json:"transactions"`
	GeneratedCount int                  `json:"generated_count"`
	Outcomes       []GenerationOutcome  `json:"generation_outcomes,omitempty"`
}

// TransactionServicer defines the contract for the transaction store and
// installment splitter.
type TransactionServicer interface {
	CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	GetInstallments(userID, parentID uint) ([]models.Transaction, error)
	GetMonthlyLedger(userID uint, year int, month time.Month) (*MonthlyLedger, error)
	MarkPaid(userID, transactionID uint, paid bool) (*models.Transaction, error)
	AttachToInvoice(userID, transactionID, invoiceID uint) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// TemplateInput carries the fields for a new recurring template.
type TemplateInput struct {
	Description    string
	Amount         int64
	Kind           models.TransactionKind
	Method         models.PaymentMethod
	CategoryID     *uint
	Frequency      models.RecurringFrequency
	StartDate      time.Time
	EndDate        *time.Time
	MaxOccurrences *int
}

// Skip reasons reported in a GenerationOutcome.
const (
	SkipBeforeStart = "before_start"
	SkipNotDue      = "not_due"
	SkipEnded       = "ended"
	SkipExhausted   = "exhausted"
	SkipExists      = "already_exists"
)

// GenerationOutcome reports what happened for one template during a
// generation run. A failing template never aborts its siblings; its error
// is carried here instead.
type GenerationOutcome struct {
	TemplateID    uint   `json:"template_id"`
	Created       bool   `json:"created"`
	TransactionID uint   `json:"transaction_id,omitempty"`
	Skipped       string `json:"skipped,omitempty"`
	Error         string `json:"error,omitempty"`
}

// RecurringServicer defines the contract for recurring templates and the
// occurrence generator.
type RecurringServicer interface {
	CreateTemplate(userID uint, in TemplateInput) (*models.RecurringTemplate, error)
	GetUserTemplates(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTemplate], error)
	GetTemplateByID(userID, templateID uint) (*models.RecurringTemplate, error)
	DeactivateTemplate(userID, templateID uint) (*models.RecurringTemplate, error)
	GenerateForMonth(userID uint, year int, month time.Month) ([]GenerationOutcome, error)
	ForceGenerate(userID, templateID uint, year int, month time.Month) (*models.Transaction, error)
}

// InvoiceView is the external projection of an invoice. Persisted invoices
// carry their database ID; forecast projections use the "forecast-YYYY-MM"
// identifier and are never stored.
type InvoiceView struct {
	ID             string               `json:"id"`
	InvoiceID      uint                 `json:"invoice_id,omitempty"`
	CardID         uint                 `json:"card_id"`
	ReferenceMonth string               `json:"reference_month"`
	ClosingDate    time.Time            `json:"closing_date"`
	DueDate        time.Time            `json:"due_date"`
	TotalAmount    int64                `json:"total_amount"`
	PaidAmount     int64                `json:"paid_amount"`
	Status         string               `json:"status"`
	Transactions   []models.Transaction `json:"transactions"`
}

// InvoiceServicer defines the contract for the billing-cycle manager.
// AttachTransaction takes the caller's open DB transaction so attachment and
// total recomputation commit atomically with the transaction that triggered
// them.
type InvoiceServicer interface {
	AttachTransaction(tx *gorm.DB, txn *models.Transaction) (*models.Invoice, error)
	GetInvoiceByID(userID, invoiceID uint) (*models.Invoice, error)
	ListWithForecast(userID, cardID uint) ([]InvoiceView, error)
	Pay(userID, invoiceID uint, amount int64, method models.PaymentMethod, date time.Time) (*models.Invoice, error)
	CloseDue(now time.Time) (int, error)
	InvalidateCache(cardID uint)
}

// ShareInput is one participant's portion of a shared transaction.
type ShareInput struct {
	ParticipantID uint
	Amount        int64
}

// SettlementResult carries everything a payment against a split touched.
type SettlementResult struct {
	Split       *models.Split            `json:"split"`
	Transaction *models.Transaction      `json:"transaction"`
	Balances    []models.PairwiseBalance `json:"balances"`
}

// SettlementServicer defines the contract for the shared-expense settlement
// engine.
type SettlementServicer interface {
	CreateSharedTransaction(userID uint, in TransactionInput, shares []ShareInput) (*models.Transaction, error)
	GetSplitByID(userID, splitID uint) (*models.Split, error)
	RegisterPayment(userID, splitID uint, amount int64) (*SettlementResult, error)
	ListBalances(userID uint) ([]models.PairwiseBalance, error)
	SettleBalance(userID, balanceID uint) (*models.PairwiseBalance, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}

// Notifier publishes events for the notification collaborator. Publishing
// happens after the core state change commits; failures are logged by the
// implementation and never surfaced to the caller.
type Notifier interface {
	Notify(kind string, userID uint, payload map[string]any)
}
