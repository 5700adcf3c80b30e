package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"centavo/internal/calendar"
	"centavo/internal/clock"
	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// transactionService is the authoritative transaction store. It owns the
// consistency of installment and recurrence metadata: every transaction
// enters the ledger through CreateTransaction or the recurring generator.
type transactionService struct {
	db               *gorm.DB
	cardService      CardServicer
	invoiceService   InvoiceServicer
	recurringService RecurringServicer
	notifier         Notifier
	clock            clock.Clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, cardService CardServicer, invoiceService InvoiceServicer, recurringService RecurringServicer, notifier Notifier, clk clock.Clock) TransactionServicer {
	return &transactionService{
		db:               db,
		cardService:      cardService,
		invoiceService:   invoiceService,
		recurringService: recurringService,
		notifier:         notifier,
		clock:            clk,
	}
}

// CreateTransaction creates a single transaction or, for a credit purchase
// with more than one installment, the full installment chain. The chain is
// created atomically: either every installment exists afterwards or none do.
func (s *transactionService) CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error) {
	if err := s.validateInput(userID, &in); err != nil {
		return nil, err
	}

	var first *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		first, txErr = s.createWithDB(tx, userID, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return first, nil
}

func (s *transactionService) validateInput(userID uint, in *TransactionInput) error {
	if in.Amount <= 0 {
		return apperrors.ErrNonPositiveAmount
	}
	if in.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Date.IsZero() {
		in.Date = s.clock.Now()
	}
	if in.InstallmentsTotal < 1 {
		in.InstallmentsTotal = 1
	}
	if in.Origin == "" {
		in.Origin = models.OriginManual
	}

	if in.Method == models.PaymentMethodCredit {
		if in.CardID == nil {
			return apperrors.ErrCardRequired
		}
		if _, err := s.cardService.GetCardByID(userID, *in.CardID); err != nil {
			return err
		}
	} else if in.InstallmentsTotal > 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "installments require the credit payment method")
	}

	if in.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *in.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return nil
}

// createWithDB creates the transaction (and installment children) inside the
// given database transaction.
func (s *transactionService) createWithDB(tx *gorm.DB, userID uint, in TransactionInput) (*models.Transaction, error) {
	n := in.InstallmentsTotal
	// Equal division with the remainder assigned to installment 1 so the
	// chain always sums exactly to the purchase amount.
	per := in.Amount / int64(n)
	remainder := in.Amount % int64(n)

	first := &models.Transaction{
		UserID:            userID,
		Description:       in.Description,
		Amount:            per + remainder,
		Kind:              in.Kind,
		Method:            in.Method,
		Date:              in.Date,
		DueDate:           in.DueDate,
		CategoryID:        in.CategoryID,
		CardID:            in.CardID,
		Origin:            in.Origin,
		InstallmentsTotal: n,
		InstallmentIndex:  1,
	}
	if err := tx.Create(first).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Credit transactions bill through an invoice; the first installment
	// attaches to the purchase month's invoice immediately. Later
	// installments attach lazily when their month's invoice is computed.
	if in.Method == models.PaymentMethodCredit {
		if _, err := s.invoiceService.AttachTransaction(tx, first); err != nil {
			return nil, err
		}
	}

	if n > 1 {
		children := make([]models.Transaction, 0, n-1)
		for i := 2; i <= n; i++ {
			children = append(children, models.Transaction{
				UserID:            userID,
				Description:       in.Description,
				Amount:            per,
				Kind:              in.Kind,
				Method:            in.Method,
				Date:              calendar.AddMonths(in.Date, i-1),
				CategoryID:        in.CategoryID,
				CardID:            in.CardID,
				Origin:            in.Origin,
				InstallmentsTotal: n,
				InstallmentIndex:  i,
				ParentID:          &first.ID,
			})
		}
		if err := tx.Create(&children).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return first, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetInstallments returns the full installment chain rooted at the given
// first installment, ordered by installment index.
func (s *transactionService) GetInstallments(userID, parentID uint) ([]models.Transaction, error) {
	parent, err := s.GetTransactionByID(userID, parentID)
	if err != nil {
		return nil, err
	}

	chain := []models.Transaction{*parent}
	var children []models.Transaction
	if err := s.db.Where("parent_id = ? AND user_id = ?", parentID, userID).
		Order("installment_index").
		Find(&children).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return append(chain, children...), nil
}

// GetMonthlyLedger runs the recurring generator for the requested month and
// then returns the month's transactions. The generated count is reported for
// observability; per-template generation failures never fail the read.
func (s *transactionService) GetMonthlyLedger(userID uint, year int, month time.Month) (*MonthlyLedger, error) {
	outcomes, err := s.recurringService.GenerateForMonth(userID, year, month)
	if err != nil {
		return nil, err
	}

	generated := 0
	for _, o := range outcomes {
		if o.Created {
			generated++
		}
	}

	start, end := calendar.MonthRange(year, month)
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &MonthlyLedger{
		Transactions:   transactions,
		GeneratedCount: generated,
		Outcomes:       outcomes,
	}, nil
}

// MarkPaid sets the paid flag on a transaction.
func (s *transactionService) MarkPaid(userID, transactionID uint, paid bool) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(transaction).Update("paid", paid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// AttachToInvoice moves a transaction onto the given invoice. The caller is
// expected to have matched billing windows already; the store re-validates
// the window and refuses to move a paid transaction off its invoice.
func (s *transactionService) AttachToInvoice(userID, transactionID, invoiceID uint) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceService.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	if transaction.Paid && (transaction.InvoiceID == nil || *transaction.InvoiceID != invoiceID) {
		return nil, apperrors.ErrTransactionPaid
	}

	year, month, err := calendar.ParseRefMonth(invoice.ReferenceMonth)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	start, end := calendar.MonthRange(year, month)
	if transaction.Date.Before(start) || !transaction.Date.Before(end) {
		return nil, apperrors.ErrOutsideInvoiceWindow
	}

	previous := transaction.InvoiceID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Updates(map[string]interface{}{
			"invoice_id": invoiceID,
			"due_date":   invoice.DueDate,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := recomputeInvoiceTotal(tx, invoiceID); err != nil {
			return err
		}
		if previous != nil && *previous != invoiceID {
			if err := recomputeInvoiceTotal(tx, *previous); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invoiceService.InvalidateCache(invoice.CardID)
	return transaction, nil
}

// DeleteTransaction removes a transaction together with its splits and
// installment children. Paid transactions and transactions attached to a
// closed or paid invoice are immutable. A removal notification is published
// after the delete commits; its failure never surfaces.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if transaction.Paid {
		return apperrors.ErrTransactionImmutable
	}
	if transaction.InvoiceID != nil {
		invoice, err := s.invoiceService.GetInvoiceByID(userID, *transaction.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != models.InvoiceStatusOpen {
			return apperrors.ErrTransactionImmutable
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Installment children go with the chain root.
		var children []models.Transaction
		if err := tx.Where("parent_id = ?", transaction.ID).Find(&children).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, child := range children {
			if child.Paid {
				return apperrors.ErrTransactionImmutable
			}
		}

		ids := []uint{transaction.ID}
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		if err := tx.Where("transaction_id IN ?", ids).Delete(&models.Split{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if transaction.InvoiceID != nil {
			if err := recomputeInvoiceTotal(tx, *transaction.InvoiceID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if transaction.CardID != nil {
		s.invoiceService.InvalidateCache(*transaction.CardID)
	}

	s.notifier.Notify("transaction.removed", userID, map[string]any{
		"transaction_id": transaction.ID,
		"description":    transaction.Description,
		"amount":         transaction.Amount,
	})
	return nil
}

// recomputeInvoiceTotal refreshes an invoice's total as the sum of its
// attached transaction amounts.
func recomputeInvoiceTotal(tx *gorm.DB, invoiceID uint) error {
	var total int64
	if err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("invoice_id = ?", invoiceID).
		Scan(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
		Update("total_amount", total).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
