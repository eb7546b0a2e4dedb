package schema

import "time"

// AccessToken is a purchased usage grant for a resource. UsedCount only grows
// and the grant deactivates when it reaches MaxUses, expires or is burned.
type AccessToken struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccessTokenID is the on-chain access token identifier
	AccessTokenID uint64 `gorm:"column:access_token_id;not null;uniqueIndex"`
	// ResourceTokenID is the token number of the resource the grant covers
	ResourceTokenID uint64 `gorm:"column:resource_token_id;not null;index"`
	// Owner is the buyer address, lowercased
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// AccessType is the granted level (read, write, full)
	AccessType string `gorm:"column:access_type;not null;type:text"`
	// ExpiryTime is when the grant stops being usable
	ExpiryTime time.Time `gorm:"column:expiry_time;not null"`
	// MaxUses is the total number of allowed consumptions
	MaxUses uint64 `gorm:"column:max_uses;not null"`
	// UsedCount is the number of consumptions so far
	UsedCount uint64 `gorm:"column:used_count;not null;default:0"`
	// IsActive is false once the grant is exhausted or burned
	IsActive bool `gorm:"column:is_active;not null;default:true;index"`
	// Price paid in wei as a decimal string
	Price string `gorm:"column:price;not null;type:text"`
	// PurchasedAt is the timestamp of the purchase block
	PurchasedAt time.Time `gorm:"column:purchased_at;not null"`
	// CreatedAt is the timestamp when this record was first indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp of the last applied event
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the AccessToken model
func (AccessToken) TableName() string {
	return "access_tokens"
}
