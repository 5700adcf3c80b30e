package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn func(userID uint, in services.TransactionInput) (*models.Transaction, error)
	getTransactionFn    func(userID, transactionID uint) (*models.Transaction, error)
	getInstallmentsFn   func(userID, parentID uint) ([]models.Transaction, error)
	getMonthlyLedgerFn  func(userID uint, year int, month time.Month) (*services.MonthlyLedger, error)
	markPaidFn          func(userID, transactionID uint, paid bool) (*models.Transaction, error)
	attachToInvoiceFn   func(userID, transactionID, invoiceID uint) (*models.Transaction, error)
	deleteTransactionFn func(userID, transactionID uint) error
}

func (m *mockTransactionService) CreateTransaction(userID uint, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetInstallments(userID, parentID uint) ([]models.Transaction, error) {
	if m.getInstallmentsFn != nil {
		return m.getInstallmentsFn(userID, parentID)
	}
	return nil, nil
}

func (m *mockTransactionService) GetMonthlyLedger(userID uint, year int, month time.Month) (*services.MonthlyLedger, error) {
	if m.getMonthlyLedgerFn != nil {
		return m.getMonthlyLedgerFn(userID, year, month)
	}
	return &services.MonthlyLedger{}, nil
}

func (m *mockTransactionService) MarkPaid(userID, transactionID uint, paid bool) (*models.Transaction, error) {
	if m.markPaidFn != nil {
		return m.markPaidFn(userID, transactionID, paid)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) AttachToInvoice(userID, transactionID, invoiceID uint) (*models.Transaction, error) {
	if m.attachToInvoiceFn != nil {
		return m.attachToInvoiceFn(userID, transactionID, invoiceID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetMonthlyLedger)
	auth.GET("/transactions/:id", handler.GetTransaction)
	auth.GET("/transactions/:id/installments", handler.GetInstallments)
	auth.PATCH("/transactions/:id/paid", handler.MarkPaid)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ uint, in services.TransactionInput) (*models.Transaction, error) {
				return &models.Transaction{
					Base:        models.Base{ID: 1},
					Description: in.Description,
					Amount:      in.Amount,
					Kind:        in.Kind,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"Groceries","amount":12050,"kind":"expense","method":"pix"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["description"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", tx["description"])
		}
	})

	t.Run("passes installments through", func(t *testing.T) {
		var captured services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ uint, in services.TransactionInput) (*models.Transaction, error) {
				captured = in
				return &models.Transaction{}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"TV","amount":100000,"kind":"expense","method":"credit","card_id":3,"installments_total":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.InstallmentsTotal != 10 {
			t.Errorf("expected 10 installments, got %d", captured.InstallmentsTotal)
		}
		if captured.CardID == nil || *captured.CardID != 3 {
			t.Errorf("expected card 3, got %v", captured.CardID)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"x","amount":0,"kind":"expense","method":"pix"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid kind", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"x","amount":100,"kind":"loan","method":"pix"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"x","amount":100,"kind":"expense","method":"pix","date":"01/02/2026"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when card required", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ uint, _ services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrCardRequired
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"description":"x","amount":100,"kind":"expense","method":"credit"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CARD_REQUIRED")
	})
}

func TestTransactionHandler_GetMonthlyLedger(t *testing.T) {
	t.Run("returns ledger with generated count", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getMonthlyLedgerFn: func(_ uint, year int, month time.Month) (*services.MonthlyLedger, error) {
				if year != 2026 || month != time.March {
					t.Errorf("expected 2026-03, got %d-%d", year, month)
				}
				return &services.MonthlyLedger{
					Transactions:   []models.Transaction{{Base: models.Base{ID: 1}}},
					GeneratedCount: 2,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?year=2026&month=3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["generated_count"].(float64) != 2 {
			t.Errorf("expected generated_count 2, got %v", result["generated_count"])
		}
	})

	t.Run("returns 400 on missing year", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?month=3", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on month out of range", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?year=2026&month=13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetInstallments(t *testing.T) {
	t.Run("returns the series", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getInstallmentsFn: func(_, parentID uint) ([]models.Transaction, error) {
				return []models.Transaction{
					{Base: models.Base{ID: parentID}, InstallmentIndex: 1},
					{Base: models.Base{ID: parentID + 1}, InstallmentIndex: 2},
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/5/installments", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		installments := result["installments"].([]interface{})
		if len(installments) != 2 {
			t.Errorf("expected 2 installments, got %d", len(installments))
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("returns 409 when immutable", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error {
				return apperrors.ErrTransactionImmutable
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/1", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_IMMUTABLE")
	})
}
