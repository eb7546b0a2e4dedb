package schema

import "time"

// ResourceTransfer is one row of a resource's append-only transfer history
type ResourceTransfer struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ResourceID references the internal resource row
	ResourceID int64 `gorm:"column:resource_id;not null;index:idx_transfers_resource_block,priority:1"`
	// FromAddress is the sender, lowercased. Zero address for mints.
	FromAddress string `gorm:"column:from_address;not null;type:text"`
	// ToAddress is the receiver, lowercased
	ToAddress string `gorm:"column:to_address;not null;type:text"`
	// BlockNumber of the transfer
	BlockNumber uint64 `gorm:"column:block_number;not null;index:idx_transfers_resource_block,priority:2"`
	// TxHash of the transaction that moved the token
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// Timestamp of the block
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ResourceTransfer model
func (ResourceTransfer) TableName() string {
	return "resource_transfers"
}
