package models

// User represents the user model in the database. Session resolution lives
// outside this core; the record exists so transactions, templates, cards and
// splits can be owned and settled between users.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Cards        []Card              `gorm:"foreignKey:UserID" json:"cards,omitempty"`
	Categories   []Category          `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions []Transaction       `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Templates    []RecurringTemplate `gorm:"foreignKey:UserID" json:"templates,omitempty"`
}
