package services

import (
	"testing"
	"time"

	"centavo/internal/clock"
	"centavo/internal/models"
	"centavo/internal/testutil"
)

// testNow pins "now" to mid-June 2024 so generation for past months is never
// future-clamped and generation for later months is.
var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestCreateTemplate(t *testing.T) {
	t.Run("applies_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		template, err := svc.CreateTemplate(user.ID, TemplateInput{
			Description: "Rent",
			Amount:      150000,
			Kind:        models.TransactionKindExpense,
			StartDate:   time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if template.Frequency != models.FrequencyMonthly {
			t.Errorf("expected monthly default, got %s", template.Frequency)
		}
		if template.Method != models.PaymentMethodTransfer {
			t.Errorf("expected transfer default, got %s", template.Method)
		}
		if !template.Active {
			t.Error("expected new template to be active")
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTemplate(user.ID, TemplateInput{
			Description: "Rent",
			Amount:      0,
			StartDate:   testNow,
		})
		testutil.AssertAppError(t, err, "NON_POSITIVE_AMOUNT")
	})

	t.Run("missing_start_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTemplate(user.ID, TemplateInput{
			Description: "Rent",
			Amount:      150000,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("zero_max_occurrences", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		zero := 0
		_, err := svc.CreateTemplate(user.ID, TemplateInput{
			Description:    "Rent",
			Amount:         150000,
			StartDate:      testNow,
			MaxOccurrences: &zero,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		categoryID := uint(9999)
		_, err := svc.CreateTemplate(user.ID, TemplateInput{
			Description: "Rent",
			Amount:      150000,
			StartDate:   testNow,
			CategoryID:  &categoryID,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeactivateTemplate(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, testNow)

		_, err := svc.DeactivateTemplate(user.ID, template.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.DeactivateTemplate(user.ID, template.ID)
		testutil.AssertNoError(t, err)

		fresh, err := svc.GetTemplateByID(user.ID, template.ID)
		testutil.AssertNoError(t, err)
		if fresh.Active {
			t.Error("expected template to be inactive")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.DeactivateTemplate(user.ID, 9999)
		testutil.AssertAppError(t, err, "TEMPLATE_NOT_FOUND")
	})
}

func TestGenerateForMonth(t *testing.T) {
	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates_occurrence_on_start_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.March)
		testutil.AssertNoError(t, err)

		if len(outcomes) != 1 || !outcomes[0].Created {
			t.Fatalf("expected one created outcome, got %+v", outcomes)
		}

		var occurrence models.Transaction
		if err := db.First(&occurrence, outcomes[0].TransactionID).Error; err != nil {
			t.Fatalf("failed to load occurrence: %v", err)
		}
		want := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		if !occurrence.Date.Equal(want) {
			t.Errorf("expected date %v, got %v", want, occurrence.Date)
		}
		if occurrence.InstallmentIndex != 3 {
			t.Errorf("expected installment index 3, got %d", occurrence.InstallmentIndex)
		}
		if occurrence.ReferenceMonth == nil || *occurrence.ReferenceMonth != "2024-03" {
			t.Errorf("expected reference month 2024-03, got %v", occurrence.ReferenceMonth)
		}
		if occurrence.Origin != models.OriginRecurring {
			t.Errorf("expected recurring origin, got %s", occurrence.Origin)
		}
		if occurrence.TemplateID == nil || *occurrence.TemplateID != template.ID {
			t.Errorf("expected template id %d, got %v", template.ID, occurrence.TemplateID)
		}
	})

	t.Run("second_run_skips_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)

		_, err := svc.GenerateForMonth(user.ID, 2024, time.March)
		testutil.AssertNoError(t, err)
		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.March)
		testutil.AssertNoError(t, err)

		if len(outcomes) != 1 || outcomes[0].Skipped != SkipExists {
			t.Fatalf("expected already_exists skip, got %+v", outcomes)
		}

		var count int64
		db.Model(&models.Transaction{}).Where("template_id = ?", template.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly 1 occurrence, got %d", count)
		}
	})

	t.Run("month_before_start_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTemplate(t, db, user.ID, 5000, start)

		outcomes, err := svc.GenerateForMonth(user.ID, 2023, time.December)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 0 {
			t.Errorf("expected no outcomes before start, got %+v", outcomes)
		}
	})

	t.Run("quarterly_off_month_not_due", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)
		db.Model(template).Update("frequency", models.FrequencyQuarterly)

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.February)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || outcomes[0].Skipped != SkipNotDue {
			t.Fatalf("expected not_due skip, got %+v", outcomes)
		}

		outcomes, err = svc.GenerateForMonth(user.ID, 2024, time.April)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || !outcomes[0].Created {
			t.Fatalf("expected created outcome for due quarter, got %+v", outcomes)
		}
	})

	t.Run("ended_template_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)
		end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
		db.Model(template).Update("end_date", end)

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.April)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || outcomes[0].Skipped != SkipEnded {
			t.Fatalf("expected ended skip, got %+v", outcomes)
		}
	})

	t.Run("cap_reached_deactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)
		db.Model(template).Update("max_occurrences", 2)

		// January and February are within the cap, March is not.
		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.March)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || outcomes[0].Skipped != SkipExhausted {
			t.Fatalf("expected exhausted skip, got %+v", outcomes)
		}

		fresh, err := svc.GetTemplateByID(user.ID, template.ID)
		testutil.AssertNoError(t, err)
		if fresh.Active {
			t.Error("expected exhausted template to be deactivated")
		}
	})

	t.Run("future_date_clamped_to_previous_month_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		// Start day 20 lands after the pinned June 15 "now".
		testutil.CreateTestTemplate(t, db, user.ID, 5000,
			time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC))

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.June)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || !outcomes[0].Created {
			t.Fatalf("expected created outcome, got %+v", outcomes)
		}

		var occurrence models.Transaction
		if err := db.First(&occurrence, outcomes[0].TransactionID).Error; err != nil {
			t.Fatalf("failed to load occurrence: %v", err)
		}
		want := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
		if !occurrence.Date.Equal(want) {
			t.Errorf("expected clamped date %v, got %v", want, occurrence.Date)
		}
	})

	t.Run("short_month_clamps_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTemplate(t, db, user.ID, 5000,
			time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC))

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.February)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 1 || !outcomes[0].Created {
			t.Fatalf("expected created outcome, got %+v", outcomes)
		}

		var occurrence models.Transaction
		if err := db.First(&occurrence, outcomes[0].TransactionID).Error; err != nil {
			t.Fatalf("failed to load occurrence: %v", err)
		}
		want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
		if !occurrence.Date.Equal(want) {
			t.Errorf("expected leap-day clamp %v, got %v", want, occurrence.Date)
		}
	})

	t.Run("inactive_template_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)
		db.Model(template).Update("active", false)

		outcomes, err := svc.GenerateForMonth(user.ID, 2024, time.March)
		testutil.AssertNoError(t, err)
		if len(outcomes) != 0 {
			t.Errorf("expected no outcomes for inactive template, got %+v", outcomes)
		}
	})
}

func TestForceGenerate(t *testing.T) {
	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("returns_created_occurrence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)

		occurrence, err := svc.ForceGenerate(user.ID, template.ID, 2024, time.February)
		testutil.AssertNoError(t, err)
		if occurrence.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", occurrence.Amount)
		}
	})

	t.Run("duplicate_conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)

		_, err := svc.ForceGenerate(user.ID, template.ID, 2024, time.February)
		testutil.AssertNoError(t, err)
		_, err = svc.ForceGenerate(user.ID, template.ID, 2024, time.February)
		testutil.AssertAppError(t, err, "DUPLICATE_OCCURRENCE")
	})

	t.Run("not_due_month_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, user.ID, 5000, start)
		db.Model(template).Update("frequency", models.FrequencyAnnual)

		_, err := svc.ForceGenerate(user.ID, template.ID, 2024, time.March)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_users_template", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db, clock.Fixed(testNow))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestTemplate(t, db, other.ID, 5000, start)

		_, err := svc.ForceGenerate(user.ID, template.ID, 2024, time.February)
		testutil.AssertAppError(t, err, "TEMPLATE_NOT_FOUND")
	})
}
