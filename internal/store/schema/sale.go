package schema

import "time"

// ResourceSale records one completed marketplace sale of a resource
type ResourceSale struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ResourceID references the internal resource row
	ResourceID int64 `gorm:"column:resource_id;not null;index"`
	// Seller address, lowercased
	Seller string `gorm:"column:seller;not null;type:text;index"`
	// Buyer address, lowercased. Already resolved past the marketplace's
	// custody address, so it is the effective new owner.
	Buyer string `gorm:"column:buyer;not null;type:text;index"`
	// Price paid in wei as a decimal string
	Price string `gorm:"column:price;not null;type:text"`
	// TxHash of the sale transaction
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// BlockNumber of the sale
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// Timestamp of the block
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ResourceSale model
func (ResourceSale) TableName() string {
	return "resource_sales"
}
