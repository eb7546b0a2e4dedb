package schema

import "time"

// ResourceReference is a citation link from one resource to another
type ResourceReference struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ReferenceID is the on-chain reference identifier
	ReferenceID uint64 `gorm:"column:reference_id;not null;uniqueIndex"`
	// SourceTokenID is the citing resource's token number
	SourceTokenID uint64 `gorm:"column:source_token_id;not null;index"`
	// TargetTokenID is the cited resource's token number
	TargetTokenID uint64 `gorm:"column:target_token_id;not null;index"`
	// Description of how the source builds on the target
	Description string `gorm:"column:description;type:text"`
	// TxHash of the transaction that created the reference
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// BlockNumber of the creation
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// Timestamp of the block
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ResourceReference model
func (ResourceReference) TableName() string {
	return "resource_references"
}
