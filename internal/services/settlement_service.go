package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// settlementService maintains "who owes whom" across shared transactions.
// Netting is incremental and event-sourced: each payment appends at most
// one BalanceEvent per counterparty, and the PairwiseBalance rows are the
// materialized running sums of those events. Replaying a payment therefore
// never double-counts: the appended delta is the pair's current net target
// minus what earlier events for the same transaction already recorded.
type settlementService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewSettlementService creates a new SettlementServicer.
func NewSettlementService(db *gorm.DB, notifier Notifier) SettlementServicer {
	return &settlementService{db: db, notifier: notifier}
}

// CreateSharedTransaction creates a transaction and its participant splits
// atomically. Shares must sum exactly to the transaction amount.
func (s *settlementService) CreateSharedTransaction(userID uint, in TransactionInput, shares []ShareInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, apperrors.ErrNonPositiveAmount
	}
	if in.Description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if len(shares) < 2 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a shared transaction needs at least two participants")
	}

	var sum int64
	seen := make(map[uint]bool, len(shares))
	for _, share := range shares {
		if share.Amount <= 0 {
			return nil, apperrors.ErrNonPositiveAmount
		}
		if seen[share.ParticipantID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duplicate participant")
		}
		seen[share.ParticipantID] = true
		sum += share.Amount
	}
	if sum != in.Amount {
		return nil, apperrors.ErrSplitSumMismatch
	}

	for participantID := range seen {
		var participant models.User
		if err := s.db.First(&participant, participantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrNotFound, "participant not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if in.Kind == "" {
		in.Kind = models.TransactionKindExpense
	}
	if in.Method == "" {
		in.Method = models.PaymentMethodPix
	}

	transaction := &models.Transaction{
		UserID:            userID,
		Description:       in.Description,
		Amount:            in.Amount,
		Kind:              in.Kind,
		Method:            in.Method,
		Date:              in.Date,
		CategoryID:        in.CategoryID,
		Origin:            models.OriginShared,
		InstallmentsTotal: 1,
		InstallmentIndex:  1,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		splits := make([]models.Split, 0, len(shares))
		for _, share := range shares {
			splits = append(splits, models.Split{
				TransactionID: transaction.ID,
				ParticipantID: share.ParticipantID,
				ShareAmount:   share.Amount,
			})
		}
		if err := tx.Create(&splits).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		transaction.Splits = splits
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetSplitByID returns a split visible to the user: either the split's
// participant or the owner of the parent transaction.
func (s *settlementService) GetSplitByID(userID, splitID uint) (*models.Split, error) {
	var split models.Split
	err := s.db.Joins("JOIN transactions ON transactions.id = splits.transaction_id").
		Where("splits.id = ? AND (splits.participant_id = ? OR transactions.user_id = ?)", splitID, userID, userID).
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSplitNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &split, nil
}

// RegisterPayment records a participant payment against a split, derives the
// split's and the parent transaction's paid state, and nets the pairwise
// balances. The whole update is atomic per (transaction, split).
func (s *settlementService) RegisterPayment(userID, splitID uint, amount int64) (*SettlementResult, error) {
	if amount <= 0 {
		return nil, apperrors.ErrNonPositiveAmount
	}

	if _, err := s.GetSplitByID(userID, splitID); err != nil {
		return nil, err
	}

	result := &SettlementResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var split models.Split
		if err := tx.First(&split, splitID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		split.AmountPaid += amount
		split.Paid = split.AmountPaid >= split.ShareAmount
		if err := tx.Model(&models.Split{}).Where("id = ?", split.ID).Updates(map[string]interface{}{
			"amount_paid": split.AmountPaid,
			"paid":        split.Paid,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var transaction models.Transaction
		if err := tx.First(&transaction, split.TransactionID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var siblings []models.Split
		if err := tx.Where("transaction_id = ?", transaction.ID).Order("id").Find(&siblings).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		allPaid := true
		for _, sibling := range siblings {
			if !sibling.Paid {
				allPaid = false
				break
			}
		}
		if transaction.Paid != allPaid {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", transaction.ID).
				Update("paid", allPaid).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			transaction.Paid = allPaid
		}

		balances, err := s.netBalances(tx, &transaction, &split, siblings)
		if err != nil {
			return err
		}

		result.Split = &split
		result.Transaction = &transaction
		result.Balances = balances
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify("settlement.updated", userID, map[string]any{
		"split_id":       result.Split.ID,
		"transaction_id": result.Transaction.ID,
		"amount_paid":    result.Split.AmountPaid,
	})
	return result, nil
}

// netBalances reconciles the paying split against every counter-split with
// the opposite sign. For each pair, the net target is min(|surplus|,
// |deficit|) in the direction under-payer -> over-payer; the appended event
// is the difference between that target and what earlier events for this
// transaction already recorded, so repeated payments converge instead of
// accumulating. Negative deltas apply to the opposite ordering; a balance
// row never goes negative.
func (s *settlementService) netBalances(tx *gorm.DB, transaction *models.Transaction, paying *models.Split, siblings []models.Split) ([]models.PairwiseBalance, error) {
	diffPayer := paying.AmountPaid - paying.ShareAmount

	touched := make([]models.PairwiseBalance, 0)
	for _, other := range siblings {
		if other.ID == paying.ID {
			continue
		}
		diffOther := other.AmountPaid - other.ShareAmount

		// Direction is under-payer owes over-payer; no crossing signs, no debt.
		var debtorID, creditorID uint
		var target int64
		switch {
		case diffPayer > 0 && diffOther < 0:
			debtorID, creditorID = other.ParticipantID, paying.ParticipantID
			target = min64(diffPayer, -diffOther)
		case diffPayer < 0 && diffOther > 0:
			debtorID, creditorID = paying.ParticipantID, other.ParticipantID
			target = min64(-diffPayer, diffOther)
		default:
			continue
		}

		recorded, err := s.recordedNet(tx, transaction.ID, debtorID, creditorID)
		if err != nil {
			return nil, err
		}

		delta := target - recorded
		if delta == 0 {
			continue
		}

		eventDebtor, eventCreditor, eventAmount := debtorID, creditorID, delta
		if delta < 0 {
			eventDebtor, eventCreditor, eventAmount = creditorID, debtorID, -delta
		}

		event := &models.BalanceEvent{
			TransactionID: transaction.ID,
			SplitID:       paying.ID,
			DebtorID:      eventDebtor,
			CreditorID:    eventCreditor,
			Amount:        eventAmount,
		}
		if err := tx.Create(event).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		balance, err := s.applyToBalance(tx, transaction, eventDebtor, eventCreditor, eventAmount)
		if err != nil {
			return nil, err
		}
		touched = append(touched, *balance)
	}
	return touched, nil
}

// recordedNet sums the events already appended for this transaction and
// ordered pair, positive in the debtor -> creditor direction.
func (s *settlementService) recordedNet(tx *gorm.DB, transactionID uint, debtorID, creditorID uint) (int64, error) {
	var forward, backward int64
	if err := tx.Model(&models.BalanceEvent{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_id = ? AND debtor_id = ? AND creditor_id = ?", transactionID, debtorID, creditorID).
		Scan(&forward).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(&models.BalanceEvent{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_id = ? AND debtor_id = ? AND creditor_id = ?", transactionID, creditorID, debtorID).
		Scan(&backward).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return forward - backward, nil
}

// applyToBalance adds the owed amount to the materialized row for the
// ordered pair. A reduction against an opposite-direction row that would go
// negative flips the remainder onto this ordering instead, so no row ever
// holds a negative amount. Any change resets the settled flag.
func (s *settlementService) applyToBalance(tx *gorm.DB, transaction *models.Transaction, debtorID, creditorID uint, amount int64) (*models.PairwiseBalance, error) {
	var opposite models.PairwiseBalance
	err := tx.Where("debtor_id = ? AND creditor_id = ?", creditorID, debtorID).First(&opposite).Error
	if err == nil && opposite.Amount > 0 {
		if opposite.Amount >= amount {
			opposite.Amount -= amount
			opposite.Settled = false
			if err := tx.Model(&models.PairwiseBalance{}).Where("id = ?", opposite.ID).Updates(map[string]interface{}{
				"amount":  opposite.Amount,
				"settled": false,
			}).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return &opposite, nil
		}
		amount -= opposite.Amount
		opposite.Amount = 0
		if err := tx.Model(&models.PairwiseBalance{}).Where("id = ?", opposite.ID).Updates(map[string]interface{}{
			"amount":  int64(0),
			"settled": false,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var balance models.PairwiseBalance
	err = tx.Where("debtor_id = ? AND creditor_id = ?", debtorID, creditorID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.PairwiseBalance{
			DebtorID:    debtorID,
			CreditorID:  creditorID,
			Amount:      amount,
			Description: transaction.Description,
		}
		if err := tx.Create(&balance).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &balance, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance.Amount += amount
	balance.Settled = false
	if err := tx.Model(&models.PairwiseBalance{}).Where("id = ?", balance.ID).Updates(map[string]interface{}{
		"amount":  balance.Amount,
		"settled": false,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &balance, nil
}

// ListBalances returns every balance row the user participates in, as
// debtor or creditor.
func (s *settlementService) ListBalances(userID uint) ([]models.PairwiseBalance, error) {
	var balances []models.PairwiseBalance
	if err := s.db.Where("debtor_id = ? OR creditor_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balances, nil
}

// SettleBalance marks a balance row settled. Only the creditor or debtor of
// the row may settle it.
func (s *settlementService) SettleBalance(userID, balanceID uint) (*models.PairwiseBalance, error) {
	var balance models.PairwiseBalance
	err := s.db.Where("id = ? AND (debtor_id = ? OR creditor_id = ?)", balanceID, userID, userID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBalanceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&balance).Update("settled", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &balance, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
