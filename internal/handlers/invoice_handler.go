package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// InvoiceHandler handles invoice-related requests.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, auditService: auditService}
}

// PayInvoiceRequest represents the request payload for paying an invoice
type PayInvoiceRequest struct {
	Amount int64                `json:"amount" binding:"required,gt=0"`
	Method models.PaymentMethod `json:"method" binding:"required,payment_method"`
	Date   *string              `json:"date"`
}

// ListInvoices lists a card's invoices with upcoming forecasts
// @Summary     List invoices for a card
// @Description Persisted invoices newest first, preceded by forecast projections for upcoming months
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Success     200 {array} services.InvoiceView "Invoices"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id}/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
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

	views, err := h.invoiceService.ListWithForecast(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": views})
}

// GetInvoice returns a single persisted invoice
// @Summary     Get an invoice
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} models.Invoice "Invoice"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(userID, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// PayInvoice registers a payment against an invoice
// @Summary     Pay an invoice
// @Description Register a partial or full payment; a covering payment marks the invoice and its transactions paid
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Param       request body PayInvoiceRequest true "Payment details"
// @Success     200 {object} models.Invoice "Updated invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Invoice already paid"
// @Router      /invoices/{id}/payments [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paymentDate := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		paymentDate = parsed
	}

	invoice, err := h.invoiceService.Pay(userID, invoiceID, req.Amount, req.Method, paymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_INVOICE", "invoice", invoiceID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "status": invoice.Status})

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// CloseDue transitions open invoices whose closing date has passed. Hit by
// the scheduler through the job-key guarded internal route.
// @Summary     Close due invoices
// @Description Transition every open invoice whose closing date passed to closed
// @Tags        invoices
// @Produce     json
// @Param       X-API-Key header string true "Job API key"
// @Success     200 {object} map[string]int "Closed count"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /internal/invoices/close-due [post]
func (h *InvoiceHandler) CloseDue(c *gin.Context) {
	closed, err := h.invoiceService.CloseDue(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"closed": closed})
}
