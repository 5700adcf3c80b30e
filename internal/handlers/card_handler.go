package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// CardHandler handles card-related requests.
type CardHandler struct {
	cardService  services.CardServicer
	auditService services.AuditServicer
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService services.CardServicer, auditService services.AuditServicer) *CardHandler {
	return &CardHandler{cardService: cardService, auditService: auditService}
}

// CreateCardRequest represents the request payload for creating a card
type CreateCardRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	CreditLimit int64  `json:"credit_limit" binding:"omitempty,gt=0"`
	ClosingDay  int    `json:"closing_day" binding:"required,billing_day"`
	DueDay      int    `json:"due_day" binding:"required,billing_day"`
}

// UpdateCardRequest represents the request payload for updating a card
type UpdateCardRequest struct {
	Name        string `json:"name" binding:"omitempty,max=100"`
	CreditLimit *int64 `json:"credit_limit" binding:"omitempty,gt=0"`
	ClosingDay  *int   `json:"closing_day" binding:"omitempty,billing_day"`
	DueDay      *int   `json:"due_day" binding:"omitempty,billing_day"`
}

// CreateCard handles the creation of a new card
// @Summary     Create a card
// @Description Register a credit card with its monthly billing cycle days
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCardRequest true "Card details"
// @Success     201 {object} models.Card "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.CreateCard(userID, req.Name, req.CreditLimit, req.ClosingDay, req.DueDay)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CARD", "card", card.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "closing_day": req.ClosingDay, "due_day": req.DueDay})

	c.JSON(http.StatusCreated, gin.H{"card": card})
}

// GetCards lists the user's cards
// @Summary     List cards
// @Description List the authenticated user's cards
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Card] "Cards"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /cards [get]
func (h *CardHandler) GetCards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cardService.GetUserCards(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCard returns a single card
// @Summary     Get a card
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Success     200 {object} models.Card "Card"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /cards/{id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCardByID(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// UpdateCard updates a card's name, limit, or billing days
// @Summary     Update a card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Param       request body UpdateCardRequest true "Fields to update"
// @Success     200 {object} models.Card "Updated card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /cards/{id} [put]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.UpdateCard(userID, cardID, req.Name, req.CreditLimit, req.ClosingDay, req.DueDay)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CARD", "card", card.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// DeactivateCard deactivates a card
// @Summary     Deactivate a card
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Success     204 "Deactivated"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /cards/{id} [delete]
func (h *CardHandler) DeactivateCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cardService.DeactivateCard(userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEACTIVATE_CARD", "card", cardID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
