package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"centavo/internal/calendar"
	"centavo/internal/clock"
	"centavo/internal/config"
	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
)

const invoiceCacheExpiration = 5 * time.Minute

// invoiceService manages monthly billing cycles: invoice creation on first
// attachment, forecast projection, and payment application. Listing results
// are cached per card and invalidated by any mutation that touches the
// card's invoices.
type invoiceService struct {
	db       *gorm.DB
	clock    clock.Clock
	notifier Notifier
	cache    *gocache.Cache
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB, clk clock.Clock, notifier Notifier) InvoiceServicer {
	return &invoiceService{
		db:       db,
		clock:    clk,
		notifier: notifier,
		cache:    gocache.New(invoiceCacheExpiration, 10*time.Minute),
	}
}

func invoiceCacheKey(cardID uint) string {
	return fmt.Sprintf("invoices:card:%d", cardID)
}

// InvalidateCache drops the cached invoice listing for a card.
func (s *invoiceService) InvalidateCache(cardID uint) {
	s.cache.Delete(invoiceCacheKey(cardID))
}

// AttachTransaction resolves the invoice for the transaction's billing month
// (creating an open invoice on first attachment), links the transaction, and
// recomputes the invoice total. Runs inside the caller's database
// transaction so attachment commits atomically with its trigger.
func (s *invoiceService) AttachTransaction(tx *gorm.DB, txn *models.Transaction) (*models.Invoice, error) {
	if txn.CardID == nil {
		return nil, apperrors.ErrCardRequired
	}

	var card models.Card
	if err := tx.First(&card, *txn.CardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	year, month := txn.Date.Year(), txn.Date.Month()
	invoice, err := s.findOrCreateInvoice(tx, &card, year, month)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusPaid:
		return nil, apperrors.ErrInvoiceAlreadyPaid
	case models.InvoiceStatusClosed:
		return nil, apperrors.ErrOutsideInvoiceWindow
	}

	if err := tx.Model(txn).Updates(map[string]interface{}{
		"invoice_id": invoice.ID,
		"due_date":   invoice.DueDate,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	txn.InvoiceID = &invoice.ID
	txn.DueDate = &invoice.DueDate

	if err := recomputeInvoiceTotal(tx, invoice.ID); err != nil {
		return nil, err
	}
	if err := tx.First(invoice, invoice.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.InvalidateCache(card.ID)
	return invoice, nil
}

// billingDays returns the card's configured closing/due days, falling back
// to day 1 / day 10 when the card has none.
func billingDays(card *models.Card) (int, int) {
	cfg := config.Get()
	closing, due := card.ClosingDay, card.DueDay
	if closing < 1 {
		closing = cfg.DefaultClosingDay
	}
	if due < 1 {
		due = cfg.DefaultDueDay
	}
	return closing, due
}

func (s *invoiceService) findOrCreateInvoice(tx *gorm.DB, card *models.Card, year int, month time.Month) (*models.Invoice, error) {
	ref := calendar.RefMonth(year, month)

	var invoice models.Invoice
	err := tx.Where("card_id = ? AND reference_month = ?", card.ID, ref).First(&invoice).Error
	if err == nil {
		return &invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	closingDay, dueDay := billingDays(card)
	invoice = models.Invoice{
		CardID:         card.ID,
		ReferenceMonth: ref,
		ClosingDate:    calendar.ClosingDate(closingDay, year, month),
		DueDate:        calendar.DueDate(dueDay, year, month),
		Status:         models.InvoiceStatusOpen,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// GetInvoiceByID returns an invoice, verifying through the card that it
// belongs to the user.
func (s *invoiceService) GetInvoiceByID(userID, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Joins("JOIN cards ON cards.id = invoices.card_id").
		Where("invoices.id = ? AND cards.user_id = ?", invoiceID, userID).
		Preload("Transactions").
		Preload("Payments").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// ListWithForecast returns the card's persisted invoices plus synthetic
// forecast projections for upcoming months that have no persisted
// counterpart, newest reference month first. Before listing, unattached
// credit transactions whose billing month has arrived are attached, which is
// where later installments join their invoices.
func (s *invoiceService) ListWithForecast(userID, cardID uint) ([]InvoiceView, error) {
	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	key := invoiceCacheKey(cardID)
	if cached, found := s.cache.Get(key); found {
		return cached.([]InvoiceView), nil
	}

	if err := s.attachMatured(&card); err != nil {
		return nil, err
	}

	var invoices []models.Invoice
	if err := s.db.Where("card_id = ?", cardID).
		Preload("Transactions").
		Order("reference_month DESC").
		Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]InvoiceView, 0, len(invoices))
	persisted := make(map[string]bool, len(invoices))
	for _, inv := range invoices {
		persisted[inv.ReferenceMonth] = true
		views = append(views, InvoiceView{
			ID:             fmt.Sprintf("%d", inv.ID),
			InvoiceID:      inv.ID,
			CardID:         inv.CardID,
			ReferenceMonth: inv.ReferenceMonth,
			ClosingDate:    inv.ClosingDate,
			DueDate:        inv.DueDate,
			TotalAmount:    inv.TotalAmount,
			PaidAmount:     inv.PaidAmount,
			Status:         string(inv.Status),
			Transactions:   inv.Transactions,
		})
	}

	forecasts, err := s.buildForecasts(&card, persisted)
	if err != nil {
		return nil, err
	}

	// Forecasts are future months; persisted invoices are past or current.
	// Prepending keeps the whole list sorted by reference month descending.
	result := append(forecasts, views...)
	s.cache.Set(key, result, invoiceCacheExpiration)
	return result, nil
}

// attachMatured attaches unattached credit transactions whose billing month
// has been reached. Installments 2..N are created unattached and join their
// invoice here, once that month's invoice is computed.
func (s *invoiceService) attachMatured(card *models.Card) error {
	now := s.clock.Now()
	_, endOfCurrent := calendar.MonthRange(now.Year(), now.Month())

	var pending []models.Transaction
	if err := s.db.Where("card_id = ? AND invoice_id IS NULL AND method = ? AND date < ?",
		card.ID, models.PaymentMethodCredit, endOfCurrent).
		Order("date").
		Find(&pending).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range pending {
		txn := &pending[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			_, attachErr := s.AttachTransaction(tx, txn)
			return attachErr
		})
		if err != nil {
			// A month whose invoice already closed or settled keeps its
			// stragglers unattached; surfacing that would fail the listing.
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.StatusCode == http.StatusConflict {
				logger.Get().Warnw("skipping matured transaction with conflicting invoice",
					"transaction_id", txn.ID, "code", appErr.Code)
				continue
			}
			return err
		}
	}
	return nil
}

// buildForecasts projects forecast invoice views for the next configured
// months, skipping months that already have a persisted invoice or no known
// future transactions.
func (s *invoiceService) buildForecasts(card *models.Card, persisted map[string]bool) ([]InvoiceView, error) {
	now := s.clock.Now()
	closingDay, dueDay := billingDays(card)

	forecasts := make([]InvoiceView, 0)
	for offset := config.Get().ForecastMonths; offset >= 1; offset-- {
		target := calendar.AddMonths(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), offset)
		year, month := target.Year(), target.Month()
		ref := calendar.RefMonth(year, month)
		if persisted[ref] {
			continue
		}

		start, end := calendar.MonthRange(year, month)
		var known []models.Transaction
		if err := s.db.Where("card_id = ? AND invoice_id IS NULL AND date >= ? AND date < ?",
			card.ID, start, end).
			Order("date").
			Find(&known).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(known) == 0 {
			continue
		}

		var total int64
		for _, txn := range known {
			total += txn.Amount
		}

		forecasts = append(forecasts, InvoiceView{
			ID:             "forecast-" + ref,
			CardID:         card.ID,
			ReferenceMonth: ref,
			ClosingDate:    calendar.ClosingDate(closingDay, year, month),
			DueDate:        calendar.DueDate(dueDay, year, month),
			TotalAmount:    total,
			Status:         "forecast",
			Transactions:   known,
		})
	}
	return forecasts, nil
}

// Pay applies a payment to an invoice. A payment that covers the total marks
// the invoice paid and settles every attached transaction; a partial payment
// closes the invoice but leaves it unpaid. Paying an already-paid invoice is
// rejected. The whole application is atomic per invoice.
func (s *invoiceService) Pay(userID, invoiceID uint, amount int64, method models.PaymentMethod, date time.Time) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, apperrors.ErrNonPositiveAmount
	}
	if date.IsZero() {
		date = s.clock.Now()
	}

	invoice, err := s.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction so concurrent payments serialize
		// on the invoice row.
		var current models.Invoice
		if err := tx.First(&current, invoiceID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if current.Status == models.InvoiceStatusPaid {
			return apperrors.ErrInvoiceAlreadyPaid
		}

		payment := &models.InvoicePayment{
			InvoiceID: invoiceID,
			Amount:    amount,
			Method:    method,
			Date:      date,
		}
		if err := tx.Create(payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		current.PaidAmount += amount
		if current.PaidAmount >= current.TotalAmount {
			current.Status = models.InvoiceStatusPaid
		} else {
			current.Status = models.InvoiceStatusClosed
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).Updates(map[string]interface{}{
			"paid_amount": current.PaidAmount,
			"status":      current.Status,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if current.Status == models.InvoiceStatusPaid {
			if err := tx.Model(&models.Transaction{}).Where("invoice_id = ?", invoiceID).
				Update("paid", true).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		*invoice = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCache(invoice.CardID)

	if invoice.Status == models.InvoiceStatusPaid {
		s.notifier.Notify("invoice.paid", userID, map[string]any{
			"invoice_id":      invoice.ID,
			"reference_month": invoice.ReferenceMonth,
			"total_amount":    invoice.TotalAmount,
		})
	}
	return invoice, nil
}

// CloseDue transitions every open invoice whose closing date has passed to
// closed, returning how many invoices changed state.
func (s *invoiceService) CloseDue(now time.Time) (int, error) {
	result := s.db.Model(&models.Invoice{}).
		Where("status = ? AND closing_date < ?", models.InvoiceStatusOpen, now).
		Update("status", models.InvoiceStatusClosed)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected > 0 {
		s.cache.Flush()
	}
	return int(result.RowsAffected), nil
}
