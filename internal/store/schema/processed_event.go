package schema

import "time"

// ProcessedEvent is the idempotency ledger. One row per applied chain event,
// keyed by txHash-logIndex, inserted in the same transaction as the mutation
// it guards.
type ProcessedEvent struct {
	// EventID is the idempotency key in the form txHash-logIndex
	EventID string `gorm:"column:event_id;primaryKey;type:text"`
	// Kind is the contract event name
	Kind string `gorm:"column:kind;not null;type:text"`
	// BlockNumber the event was emitted in
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// ProcessedAt is when the event was applied
	ProcessedAt time.Time `gorm:"column:processed_at;not null;default:now()"`
}

// TableName specifies the table name for the ProcessedEvent model
func (ProcessedEvent) TableName() string {
	return "processed_events"
}
