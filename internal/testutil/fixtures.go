package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centavo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCard creates a card closing on the 1st and due on the 10th.
func CreateTestCard(t *testing.T, db *gorm.DB, userID uint) *models.Card {
	t.Helper()
	return CreateTestCardWithDays(t, db, userID, 1, 10)
}

// CreateTestCardWithDays creates a card with the given billing days.
func CreateTestCardWithDays(t *testing.T, db *gorm.DB, userID uint, closingDay, dueDay int) *models.Card {
	t.Helper()

	card := &models.Card{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Card %d", nextID()),
		CreditLimit: 500000, // $5000.00
		ClosingDay:  closingDay,
		DueDay:      dueDay,
		IsActive:    true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a one-off expense of the given amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:            userID,
		Description:       fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:            amount,
		Kind:              models.TransactionKindExpense,
		Method:            models.PaymentMethodPix,
		Origin:            models.OriginManual,
		Date:              time.Now(),
		InstallmentsTotal: 1,
		InstallmentIndex:  1,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTemplate creates an active monthly template starting at startDate.
func CreateTestTemplate(t *testing.T, db *gorm.DB, userID uint, amount int64, startDate time.Time) *models.RecurringTemplate {
	t.Helper()

	template := &models.RecurringTemplate{
		UserID:      userID,
		Description: fmt.Sprintf("Test Template %d", nextID()),
		Amount:      amount,
		Kind:        models.TransactionKindExpense,
		Method:      models.PaymentMethodTransfer,
		Frequency:   models.FrequencyMonthly,
		StartDate:   startDate,
		Active:      true,
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return template
}

// CreateTestInvoice creates an open invoice for the card and month.
func CreateTestInvoice(t *testing.T, db *gorm.DB, cardID uint, refMonth string, closing, due time.Time) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		CardID:         cardID,
		ReferenceMonth: refMonth,
		ClosingDate:    closing,
		DueDate:        due,
		Status:         models.InvoiceStatusOpen,
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}
	return invoice
}
