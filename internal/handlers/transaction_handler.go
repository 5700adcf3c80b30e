package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Description       string                 `json:"description" binding:"required,max=500"`
	Amount            int64                  `json:"amount" binding:"required,gt=0"`
	Kind              models.TransactionKind `json:"kind" binding:"required,transaction_kind"`
	Method            models.PaymentMethod   `json:"method" binding:"required,payment_method"`
	Date              *string                `json:"date"`
	CategoryID        *uint                  `json:"category_id"`
	CardID            *uint                  `json:"card_id"`
	InstallmentsTotal int                    `json:"installments_total" binding:"omitempty,min=1,max=120"`
}

// CreateTransaction handles the creation of a new transaction. A credit
// purchase with installments_total > 1 is split into monthly installments.
// @Summary     Create a transaction
// @Description Create a one-off or installment purchase; credit purchases attach to the card's invoice
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionDate := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		transactionDate = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		Description:       req.Description,
		Amount:            req.Amount,
		Kind:              req.Kind,
		Method:            req.Method,
		Date:              transactionDate,
		CategoryID:        req.CategoryID,
		CardID:            req.CardID,
		InstallmentsTotal: req.InstallmentsTotal,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "amount": req.Amount, "installments": req.InstallmentsTotal})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetMonthlyLedger returns the month's transactions, generating any due
// recurring occurrences first.
// @Summary     Monthly ledger
// @Description List a month's transactions; due recurring occurrences are generated as a side effect
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       year query int true "Year"
// @Param       month query int true "Month (1-12)"
// @Success     200 {object} services.MonthlyLedger "Ledger"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetMonthlyLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1970 || year > 9999 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid month"))
		return
	}

	ledger, err := h.transactionService.GetMonthlyLedger(userID, year, time.Month(month))
	if err != nil {
		respondWithError(c, err)
		return
	}

	if ledger.GeneratedCount > 0 {
		h.auditService.Log(userID, "GENERATE_OCCURRENCES", "ledger", 0, c.ClientIP(),
			map[string]interface{}{"year": year, "month": month, "generated": ledger.GeneratedCount})
	}

	c.JSON(http.StatusOK, ledger)
}

// GetTransaction returns a single transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetInstallments lists an installment series from its first installment
// @Summary     List installments
// @Description List every installment of a purchase, ordered by index
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "First installment ID"
// @Success     200 {array} models.Transaction "Installments"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id}/installments [get]
func (h *TransactionHandler) GetInstallments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	parentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	installments, err := h.transactionService.GetInstallments(userID, parentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installments": installments})
}

// MarkPaidRequest represents the request payload for marking a transaction paid
type MarkPaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

// MarkPaid sets a transaction's paid flag
// @Summary     Mark a transaction paid or unpaid
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body MarkPaidRequest true "Paid flag"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id}/paid [patch]
func (h *TransactionHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.MarkPaid(userID, transactionID, *req.Paid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// AttachToInvoiceRequest represents the request payload for moving a
// transaction to another invoice
type AttachToInvoiceRequest struct {
	InvoiceID uint `json:"invoice_id" binding:"required"`
}

// AttachToInvoice moves a transaction to another open invoice
// @Summary     Move a transaction to another invoice
// @Description Attach a credit transaction to a different open invoice whose window contains its date
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body AttachToInvoiceRequest true "Target invoice"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     409 {object} ErrorResponse "Paid transaction or window mismatch"
// @Router      /transactions/{id}/invoice [post]
func (h *TransactionHandler) AttachToInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AttachToInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.AttachToInvoice(userID, transactionID, req.InvoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction and its dependents
// @Summary     Delete a transaction
// @Description Delete a transaction with its splits and installment children; paid or closed-invoice transactions are immutable
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Immutable transaction"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
