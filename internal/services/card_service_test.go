package services

import (
	"testing"

	"centavo/internal/pagination"
	"centavo/internal/testutil"
)

func TestCreateCard(t *testing.T) {
	t.Run("creates_card", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)

		card, err := svc.CreateCard(user.ID, "Platinum", 500000, 5, 12)
		testutil.AssertNoError(t, err)

		if card.ID == 0 {
			t.Fatal("expected non-zero card ID")
		}
		if card.ClosingDay != 5 || card.DueDay != 12 {
			t.Errorf("expected days 5/12, got %d/%d", card.ClosingDay, card.DueDay)
		}
		if !card.IsActive {
			t.Error("expected new card to be active")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCard(user.ID, "", 0, 5, 12)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("closing_day_out_of_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCard(user.ID, "Bad", 0, 0, 12)
		testutil.AssertAppError(t, err, "INVALID_CARD_DAY")

		_, err = svc.CreateCard(user.ID, "Bad", 0, 5, 32)
		testutil.AssertAppError(t, err, "INVALID_CARD_DAY")
	})
}

func TestGetUserCards(t *testing.T) {
	t.Run("lists_only_own_cards", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestCard(t, db, user.ID)
		testutil.CreateTestCard(t, db, user.ID)
		testutil.CreateTestCard(t, db, other.ID)

		page, err := svc.GetUserCards(user.ID, pagination.PageRequest{Page: 1, PageSize: 10})
		testutil.AssertNoError(t, err)

		if len(page.Data) != 2 {
			t.Errorf("expected 2 cards, got %d", len(page.Data))
		}
		if page.TotalItems != 2 {
			t.Errorf("expected total 2, got %d", page.TotalItems)
		}
	})
}

func TestGetCardByID(t *testing.T) {
	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetCardByID(user.ID, 9999)
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})

	t.Run("other_users_card", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, other.ID)

		_, err := svc.GetCardByID(user.ID, card.ID)
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})
}

func TestUpdateCard(t *testing.T) {
	t.Run("updates_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)

		limit := int64(1000000)
		closing := 20
		updated, err := svc.UpdateCard(user.ID, card.ID, "Renamed", &limit, &closing, nil)
		testutil.AssertNoError(t, err)

		fresh, err := svc.GetCardByID(user.ID, updated.ID)
		testutil.AssertNoError(t, err)
		if fresh.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", fresh.Name)
		}
		if fresh.CreditLimit != 1000000 {
			t.Errorf("expected limit 1000000, got %d", fresh.CreditLimit)
		}
		if fresh.ClosingDay != 20 {
			t.Errorf("expected closing day 20, got %d", fresh.ClosingDay)
		}
	})

	t.Run("invalid_due_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)

		due := 0
		_, err := svc.UpdateCard(user.ID, card.ID, "", nil, nil, &due)
		testutil.AssertAppError(t, err, "INVALID_CARD_DAY")
	})
}

func TestDeactivateCard(t *testing.T) {
	t.Run("marks_inactive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)

		err := svc.DeactivateCard(user.ID, card.ID)
		testutil.AssertNoError(t, err)

		fresh, err := svc.GetCardByID(user.ID, card.ID)
		testutil.AssertNoError(t, err)
		if fresh.IsActive {
			t.Error("expected card to be inactive")
		}
	})
}
