package testutil_test

import (
	"testing"
	"time"

	"centavo/internal/errors"
	"centavo/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "cards", "categories", "transactions", "recurring_templates", "invoices", "invoice_payments", "splits", "pairwise_balances", "balance_events", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}

	card := testutil.CreateTestCardWithDays(t, db, user.ID, 5, 15)
	if card.ClosingDay != 5 || card.DueDay != 15 {
		t.Errorf("expected billing days 5/15, got %d/%d", card.ClosingDay, card.DueDay)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, 5000)
	if tx.Amount != 5000 {
		t.Errorf("expected amount 5000, got %d", tx.Amount)
	}

	template := testutil.CreateTestTemplate(t, db, user.ID, 2500, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	if !template.Active {
		t.Error("template should be active")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.ErrCardNotFound
	testutil.AssertAppError(t, err, "CARD_NOT_FOUND")

	wrapped := errors.Wrap(errors.ErrSplitSumMismatch, nil)
	testutil.AssertAppError(t, wrapped, "SPLIT_SUM_MISMATCH")
}
