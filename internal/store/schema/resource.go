package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Resource represents the resources table, one row per minted academic NFT.
// CurrentOwner and LastTransferBlock move together: ownership only advances
// when a transfer at an equal or higher block is applied.
type Resource struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the on-chain token number
	TokenID uint64 `gorm:"column:token_id;not null;uniqueIndex"`
	// Title of the academic work
	Title string `gorm:"column:title;not null;type:text"`
	// Description of the academic work
	Description string `gorm:"column:description;type:text"`
	// ContentPointer is the IPFS hash of the underlying content
	ContentPointer string `gorm:"column:content_pointer;not null;type:text"`
	// ResourceType classifies the content (paper, dataset, code, other)
	ResourceType string `gorm:"column:resource_type;not null;type:text;index"`
	// Authors is the JSON array of author addresses, lowercased
	Authors datatypes.JSON `gorm:"column:authors;type:jsonb"`
	// Creator is the minting address, lowercased
	Creator string `gorm:"column:creator;not null;type:text;index"`
	// CurrentOwner is the current owner address, lowercased
	CurrentOwner string `gorm:"column:current_owner;not null;type:text;index"`
	// LastTransferBlock is the block of the transfer that set CurrentOwner
	LastTransferBlock uint64 `gorm:"column:last_transfer_block;not null;default:0"`
	// RoyaltyPercentage is the creator royalty on secondary sales (0-15)
	RoyaltyPercentage int64 `gorm:"column:royalty_percentage;not null;default:5"`
	// IsListed indicates an active marketplace listing
	IsListed bool `gorm:"column:is_listed;not null;default:false;index"`
	// Price is the listing price in wei as a decimal string, "0" when unlisted
	Price string `gorm:"column:price;not null;default:'0';type:text"`
	// ListingSeller is the address that created the active listing, lowercased,
	// "" when unlisted
	ListingSeller string `gorm:"column:listing_seller;not null;default:'';type:text"`
	// ListedAt is the block timestamp of the active listing, nil when unlisted
	ListedAt *time.Time `gorm:"column:listed_at"`
	// MintedAt is the timestamp of the mint block
	MintedAt time.Time `gorm:"column:minted_at;not null"`
	// CreatedAt is the timestamp when this record was first indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp of the last applied event
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`

	// Associations
	Transfers []ResourceTransfer `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
	Sales     []ResourceSale     `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Resource model
func (Resource) TableName() string {
	return "resources"
}
