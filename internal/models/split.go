package models

// Split is one participant's portion of a shared transaction. Paid is
// derived: AmountPaid >= ShareAmount. Splits are created atomically with
// the parent transaction and cascade with its deletion.
type Split struct {
	Base
	TransactionID uint  `gorm:"not null;index" json:"transaction_id"`
	ParticipantID uint  `gorm:"not null;index" json:"participant_id"`
	ShareAmount   int64 `gorm:"type:bigint;not null" json:"share_amount"`
	AmountPaid    int64 `gorm:"type:bigint;default:0" json:"amount_paid"`
	Paid          bool  `gorm:"default:false" json:"paid"`

	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	Participant User        `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}
