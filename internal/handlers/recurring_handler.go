package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// RecurringHandler handles recurring-template requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateTemplateRequest represents the request payload for creating a template
type CreateTemplateRequest struct {
	Description    string                    `json:"description" binding:"required,max=500"`
	Amount         int64                     `json:"amount" binding:"required,gt=0"`
	Kind           models.TransactionKind    `json:"kind" binding:"required,transaction_kind"`
	Method         models.PaymentMethod      `json:"method" binding:"omitempty,payment_method"`
	CategoryID     *uint                     `json:"category_id"`
	Frequency      models.RecurringFrequency `json:"frequency" binding:"omitempty,frequency"`
	StartDate      string                    `json:"start_date" binding:"required"`
	EndDate        *string                   `json:"end_date"`
	MaxOccurrences *int                      `json:"max_occurrences" binding:"omitempty,min=1,max=600"`
}

// GenerateRequest represents the request payload for a generation run
type GenerateRequest struct {
	Year  int `json:"year" binding:"required,min=1970,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// CreateTemplate handles the creation of a new recurring template
// @Summary     Create a recurring template
// @Description Create a template that seeds monthly, quarterly, or annual occurrences
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTemplateRequest true "Template details"
// @Success     201 {object} models.RecurringTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		endDate = &parsed
	}

	template, err := h.recurringService.CreateTemplate(userID, services.TemplateInput{
		Description:    req.Description,
		Amount:         req.Amount,
		Kind:           req.Kind,
		Method:         req.Method,
		CategoryID:     req.CategoryID,
		Frequency:      req.Frequency,
		StartDate:      startDate,
		EndDate:        endDate,
		MaxOccurrences: req.MaxOccurrences,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TEMPLATE", "recurring_template", template.ID, c.ClientIP(),
		map[string]interface{}{"frequency": template.Frequency, "amount": template.Amount})

	c.JSON(http.StatusCreated, gin.H{"template": template})
}

// GetTemplates lists the user's templates
// @Summary     List recurring templates
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.RecurringTemplate] "Templates"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /recurring [get]
func (h *RecurringHandler) GetTemplates(c *gin.Context) {
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

	result, err := h.recurringService.GetUserTemplates(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTemplate returns a single template
// @Summary     Get a recurring template
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Template"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	template, err := h.recurringService.GetTemplateByID(userID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// DeactivateTemplate stops future generation for a template
// @Summary     Deactivate a recurring template
// @Description Stop future occurrence generation; already generated occurrences stay
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Deactivated template"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /recurring/{id}/deactivate [post]
func (h *RecurringHandler) DeactivateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	template, err := h.recurringService.DeactivateTemplate(userID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEACTIVATE_TEMPLATE", "recurring_template", templateID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// Generate runs occurrence generation for a month
// @Summary     Generate occurrences for a month
// @Description Run the idempotent generation pass for the given month across the user's active templates
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateRequest true "Target month"
// @Success     200 {array} services.GenerationOutcome "Per-template outcomes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /recurring/generate [post]
func (h *RecurringHandler) Generate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	outcomes, err := h.recurringService.GenerateForMonth(userID, req.Year, time.Month(req.Month))
	if err != nil {
		respondWithError(c, err)
		return
	}

	created := 0
	for _, outcome := range outcomes {
		if outcome.Created {
			created++
		}
	}
	h.auditService.Log(userID, "GENERATE_OCCURRENCES", "recurring_template", 0, c.ClientIP(),
		map[string]interface{}{"year": req.Year, "month": req.Month, "generated": created})

	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes, "generated_count": created})
}
