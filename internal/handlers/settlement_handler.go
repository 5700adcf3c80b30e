package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// SettlementHandler handles shared-expense requests.
type SettlementHandler struct {
	settlementService services.SettlementServicer
	auditService      services.AuditServicer
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService services.SettlementServicer, auditService services.AuditServicer) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService, auditService: auditService}
}

// ShareRequest is one participant's share of a shared transaction
type ShareRequest struct {
	ParticipantID uint  `json:"participant_id" binding:"required"`
	Amount        int64 `json:"amount" binding:"required,gt=0"`
}

// CreateSharedRequest represents the request payload for a shared transaction
type CreateSharedRequest struct {
	Description string                 `json:"description" binding:"required,max=500"`
	Amount      int64                  `json:"amount" binding:"required,gt=0"`
	Kind        models.TransactionKind `json:"kind" binding:"omitempty,transaction_kind"`
	Method      models.PaymentMethod   `json:"method" binding:"omitempty,payment_method"`
	Date        *string                `json:"date"`
	CategoryID  *uint                  `json:"category_id"`
	Shares      []ShareRequest         `json:"shares" binding:"required,min=2,dive"`
}

// SplitPaymentRequest represents the request payload for paying a split
type SplitPaymentRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// CreateShared creates a shared transaction with its splits
// @Summary     Create a shared transaction
// @Description Create a transaction split between participants; shares must sum exactly to the amount
// @Tags        settlement
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSharedRequest true "Shared transaction details"
// @Success     201 {object} models.Transaction "Transaction with splits"
// @Failure     400 {object} ErrorResponse "Invalid input or share sum mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /shared [post]
func (h *SettlementHandler) CreateShared(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSharedRequest
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

	shares := make([]services.ShareInput, 0, len(req.Shares))
	for _, share := range req.Shares {
		shares = append(shares, services.ShareInput{
			ParticipantID: share.ParticipantID,
			Amount:        share.Amount,
		})
	}

	transaction, err := h.settlementService.CreateSharedTransaction(userID, services.TransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Method:      req.Method,
		Date:        transactionDate,
		CategoryID:  req.CategoryID,
	}, shares)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SHARED_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "participants": len(req.Shares)})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetSplit returns a single split
// @Summary     Get a split
// @Tags        settlement
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Split ID"
// @Success     200 {object} models.Split "Split"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /splits/{id} [get]
func (h *SettlementHandler) GetSplit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	splitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	split, err := h.settlementService.GetSplitByID(userID, splitID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"split": split})
}

// RegisterPayment registers a participant payment against a split
// @Summary     Pay a split
// @Description Register a payment against a split and net the pairwise balances it affects
// @Tags        settlement
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Split ID"
// @Param       request body SplitPaymentRequest true "Payment amount"
// @Success     200 {object} services.SettlementResult "Updated split, transaction, and balances"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /splits/{id}/payments [post]
func (h *SettlementHandler) RegisterPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	splitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SplitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.settlementService.RegisterPayment(userID, splitID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REGISTER_SPLIT_PAYMENT", "split", splitID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, result)
}

// ListBalances lists the user's pairwise balances
// @Summary     List balances
// @Description List every pairwise balance the user participates in as debtor or creditor
// @Tags        settlement
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.PairwiseBalance "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /balances [get]
func (h *SettlementHandler) ListBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.settlementService.ListBalances(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// SettleBalance marks a balance settled
// @Summary     Settle a balance
// @Tags        settlement
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Balance ID"
// @Success     200 {object} models.PairwiseBalance "Settled balance"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /balances/{id}/settle [post]
func (h *SettlementHandler) SettleBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balanceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.settlementService.SettleBalance(userID, balanceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
