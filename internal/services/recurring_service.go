package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"centavo/internal/calendar"
	"centavo/internal/clock"
	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// recurringService owns recurring templates and the lazy occurrence
// generator. Generation for a (user, month) pair is idempotent: the
// existence check and the insert run inside one database transaction, and
// the (template_id, reference_month) unique index backs the check under
// concurrent triggers.
type recurringService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, clk clock.Clock) RecurringServicer {
	return &recurringService{db: db, clock: clk}
}

// CreateTemplate creates a new recurring template.
func (s *recurringService) CreateTemplate(userID uint, in TemplateInput) (*models.RecurringTemplate, error) {
	if in.Amount <= 0 {
		return nil, apperrors.ErrNonPositiveAmount
	}
	if in.Description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.StartDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if in.Frequency == "" {
		in.Frequency = models.FrequencyMonthly
	}
	if in.Method == "" {
		in.Method = models.PaymentMethodTransfer
	}
	if in.MaxOccurrences != nil && *in.MaxOccurrences < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max occurrences must be at least 1")
	}

	if in.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *in.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	template := &models.RecurringTemplate{
		UserID:         userID,
		Description:    in.Description,
		Amount:         in.Amount,
		Kind:           in.Kind,
		Method:         in.Method,
		CategoryID:     in.CategoryID,
		Frequency:      in.Frequency,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		MaxOccurrences: in.MaxOccurrences,
		Active:         true,
	}

	if err := s.db.Create(template).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return template, nil
}

// GetUserTemplates returns a paginated list of the user's templates.
func (s *recurringService) GetUserTemplates(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTemplate], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTemplate{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.RecurringTemplate
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTemplateByID returns a template by ID if it belongs to the user.
func (s *recurringService) GetTemplateByID(userID, templateID uint) (*models.RecurringTemplate, error) {
	var template models.RecurringTemplate
	if err := s.db.Where("id = ? AND user_id = ?", templateID, userID).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &template, nil
}

// DeactivateTemplate marks a template inactive. Deactivating an already
// inactive template is a no-op, not an error.
func (s *recurringService) DeactivateTemplate(userID, templateID uint) (*models.RecurringTemplate, error) {
	template, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}

	if !template.Active {
		return template, nil
	}

	if err := s.db.Model(template).Update("active", false).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return template, nil
}

// GenerateForMonth ensures every active template owned by the user has at
// most one materialized occurrence in the target month, creating occurrences
// that are missing. Templates are processed independently: one template's
// failure is collected into its outcome and never aborts its siblings.
func (s *recurringService) GenerateForMonth(userID uint, year int, month time.Month) ([]GenerationOutcome, error) {
	_, end := calendar.MonthRange(year, month)

	var templates []models.RecurringTemplate
	if err := s.db.Where("user_id = ? AND active = ? AND start_date < ?", userID, true, end).
		Order("id").
		Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	outcomes := make([]GenerationOutcome, 0, len(templates))
	for i := range templates {
		outcome := s.generateOne(&templates[i], year, month)
		if outcome.Error != "" {
			logger.Get().Errorw("occurrence generation failed",
				"template_id", outcome.TemplateID,
				"year", year,
				"month", int(month),
				"error", outcome.Error,
			)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ForceGenerate materializes an occurrence for one template and month,
// surfacing the duplicate case as a conflict instead of skipping it.
func (s *recurringService) ForceGenerate(userID, templateID uint, year int, month time.Month) (*models.Transaction, error) {
	template, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}

	outcome := s.generateOne(template, year, month)
	switch {
	case outcome.Created:
		var occurrence models.Transaction
		if err := s.db.First(&occurrence, outcome.TransactionID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &occurrence, nil
	case outcome.Skipped == SkipExists:
		return nil, apperrors.ErrDuplicateOccurrence
	case outcome.Error != "":
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New(outcome.Error))
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "template is not due for this month ("+outcome.Skipped+")")
	}
}

// generateOne applies the generation algorithm to a single template.
func (s *recurringService) generateOne(template *models.RecurringTemplate, year int, month time.Month) GenerationOutcome {
	out := GenerationOutcome{TemplateID: template.ID}

	monthsDiff := calendar.MonthsBetween(template.StartDate, year, month)
	if monthsDiff < 0 {
		out.Skipped = SkipBeforeStart
		return out
	}

	start, _ := calendar.MonthRange(year, month)
	if template.EndDate != nil && start.After(*template.EndDate) {
		out.Skipped = SkipEnded
		return out
	}

	switch template.Frequency {
	case models.FrequencyQuarterly:
		if monthsDiff%3 != 0 {
			out.Skipped = SkipNotDue
			return out
		}
	case models.FrequencyAnnual:
		if monthsDiff%12 != 0 {
			out.Skipped = SkipNotDue
			return out
		}
	}

	// A template with an occurrence cap exhausts instead of generating.
	if template.MaxOccurrences != nil && monthsDiff >= *template.MaxOccurrences {
		if template.Active {
			if err := s.db.Model(template).Update("active", false).Error; err != nil {
				out.Error = err.Error()
				return out
			}
		}
		out.Skipped = SkipExhausted
		return out
	}

	ref := calendar.RefMonth(year, month)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("template_id = ? AND reference_month = ?", template.ID, ref).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			out.Skipped = SkipExists
			return nil
		}

		occurrence := s.buildOccurrence(template, year, month, monthsDiff, ref)
		if err := tx.Create(occurrence).Error; err != nil {
			return err
		}
		out.Created = true
		out.TransactionID = occurrence.ID
		return nil
	})
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// buildOccurrence materializes one occurrence for the target month. The
// occurrence lands on the template's start day clamped to the month; a date
// that would fall after "now" is pulled back to the last day of the previous
// month so recurring charges are never posted future-dated.
func (s *recurringService) buildOccurrence(template *models.RecurringTemplate, year int, month time.Month, monthsDiff int, ref string) *models.Transaction {
	date := calendar.ClampedDate(year, month, template.StartDate.Day())
	if date.After(s.clock.Now()) {
		first, _ := calendar.MonthRange(year, month)
		date = first.AddDate(0, 0, -1)
	}

	total := 1
	if template.MaxOccurrences != nil {
		total = *template.MaxOccurrences
	}

	return &models.Transaction{
		UserID:            template.UserID,
		Description:       template.Description,
		Amount:            template.Amount,
		Kind:              template.Kind,
		Method:            template.Method,
		Date:              date,
		CategoryID:        template.CategoryID,
		Paid:              false,
		Origin:            models.OriginRecurring,
		InstallmentsTotal: total,
		InstallmentIndex:  monthsDiff + 1,
		TemplateID:        &template.ID,
		ReferenceMonth:    &ref,
	}
}
