package models

// PairwiseBalance is the materialized netted amount one user owes another.
// At most one row exists per ordered (debtor, creditor) pair and the amount
// is never negative: a negative net produces a row on the opposite ordering
// instead. Every change resets Settled to false.
type PairwiseBalance struct {
	Base
	DebtorID    uint   `gorm:"not null;uniqueIndex:idx_debtor_creditor" json:"debtor_id"`
	CreditorID  uint   `gorm:"not null;uniqueIndex:idx_debtor_creditor" json:"creditor_id"`
	Amount      int64  `gorm:"type:bigint;not null" json:"amount"`
	Description string `json:"description"`
	Settled     bool   `gorm:"default:false" json:"settled"`

	Debtor   User `gorm:"foreignKey:DebtorID" json:"debtor,omitempty"`
	Creditor User `gorm:"foreignKey:CreditorID" json:"creditor,omitempty"`
}

// BalanceEvent is the append-only ledger of netting events that feed
// PairwiseBalance. Each split payment that crosses signs appends exactly one
// event; the materialized row is the running sum, which keeps the additive
// contract auditable instead of silently mutating a counter.
type BalanceEvent struct {
	Base
	TransactionID uint  `gorm:"not null;index" json:"transaction_id"`
	SplitID       uint  `gorm:"not null;index" json:"split_id"`
	DebtorID      uint  `gorm:"not null" json:"debtor_id"`
	CreditorID    uint  `gorm:"not null" json:"creditor_id"`
	Amount        int64 `gorm:"type:bigint;not null" json:"amount"`
}
