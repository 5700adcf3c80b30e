package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// cardService handles card-related business logic.
type cardService struct {
	db *gorm.DB
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB) CardServicer {
	return &cardService{db: db}
}

// CreateCard creates a new credit card for the user.
func (s *cardService) CreateCard(userID uint, name string, creditLimit int64, closingDay, dueDay int) (*models.Card, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if closingDay < 1 || closingDay > 31 || dueDay < 1 || dueDay > 31 {
		return nil, apperrors.ErrInvalidCardDay
	}

	card := &models.Card{
		UserID:      userID,
		Name:        name,
		CreditLimit: creditLimit,
		ClosingDay:  closingDay,
		DueDay:      dueDay,
		IsActive:    true,
	}

	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return card, nil
}

// GetUserCards returns a paginated list of the user's cards.
func (s *cardService) GetUserCards(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error) {
	page.Defaults()

	base := s.db.Model(&models.Card{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.Card
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCardByID returns a card by ID if it belongs to the user.
func (s *cardService) GetCardByID(userID, cardID uint) (*models.Card, error) {
	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCard updates an existing card's fields.
func (s *cardService) UpdateCard(userID, cardID uint, name string, creditLimit *int64, closingDay, dueDay *int) (*models.Card, error) {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if creditLimit != nil {
		updates["credit_limit"] = *creditLimit
	}
	if closingDay != nil {
		if *closingDay < 1 || *closingDay > 31 {
			return nil, apperrors.ErrInvalidCardDay
		}
		updates["closing_day"] = *closingDay
	}
	if dueDay != nil {
		if *dueDay < 1 || *dueDay > 31 {
			return nil, apperrors.ErrInvalidCardDay
		}
		updates["due_day"] = *dueDay
	}

	if len(updates) > 0 {
		if err := s.db.Model(card).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return card, nil
}

// DeactivateCard marks a card inactive. Invoices and attached transactions
// are preserved.
func (s *cardService) DeactivateCard(userID, cardID uint) error {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return err
	}

	if err := s.db.Model(card).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
