package dto

import (
	"encoding/json"
	"time"

	"github.com/scholarly-labs/resource-indexer/internal/store/schema"
)

// Resource is the API representation of an indexed resource
type Resource struct {
	TokenID           uint64     `json:"token_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	ContentPointer    string     `json:"content_pointer"`
	ResourceType      string     `json:"resource_type"`
	Authors           []string   `json:"authors"`
	Creator           string     `json:"creator"`
	CurrentOwner      string     `json:"current_owner"`
	RoyaltyPercentage int64      `json:"royalty_percentage"`
	IsListed          bool       `json:"is_listed"`
	Price             string     `json:"price"`
	Seller            string     `json:"seller,omitempty"`
	ListedAt          *time.Time `json:"listed_at,omitempty"`
	MintedAt          time.Time  `json:"minted_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ResourceList is a paginated page of resources
type ResourceList struct {
	Resources []*Resource `json:"resources"`
	Total     uint64      `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}

// Transfer is one entry of a resource's ownership history
type Transfer struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	Timestamp   time.Time `json:"timestamp"`
}

// Reference is a citation link between two resources
type Reference struct {
	ReferenceID   uint64    `json:"reference_id"`
	SourceTokenID uint64    `json:"source_token_id"`
	TargetTokenID uint64    `json:"target_token_id"`
	Description   string    `json:"description,omitempty"`
	TxHash        string    `json:"tx_hash"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReferenceList groups a resource's outgoing citations and the citations
// pointing back at it
type ReferenceList struct {
	References []*Reference `json:"references"`
	CitedBy    []*Reference `json:"cited_by"`
}

// AccessToken is the API representation of a purchased access grant
type AccessToken struct {
	AccessTokenID   uint64    `json:"access_token_id"`
	ResourceTokenID uint64    `json:"resource_token_id"`
	Owner           string    `json:"owner"`
	AccessType      string    `json:"access_type"`
	ExpiryTime      time.Time `json:"expiry_time"`
	MaxUses         uint64    `json:"max_uses"`
	UsedCount       uint64    `json:"used_count"`
	IsActive        bool      `json:"is_active"`
	Price           string    `json:"price"`
}

// AccessCheck reports whether an address holds a usable grant for a resource
type AccessCheck struct {
	ResourceTokenID uint64       `json:"resource_token_id"`
	Address         string       `json:"address"`
	HasAccess       bool         `json:"has_access"`
	AccessToken     *AccessToken `json:"access_token,omitempty"`
}

// FromResource maps a stored resource to its API shape
func FromResource(r *schema.Resource) *Resource {
	var authors []string
	if len(r.Authors) > 0 {
		// stored as a JSON array; a decode failure leaves authors empty
		_ = json.Unmarshal(r.Authors, &authors)
	}

	return &Resource{
		TokenID:           r.TokenID,
		Title:             r.Title,
		Description:       r.Description,
		ContentPointer:    r.ContentPointer,
		ResourceType:      r.ResourceType,
		Authors:           authors,
		Creator:           r.Creator,
		CurrentOwner:      r.CurrentOwner,
		RoyaltyPercentage: r.RoyaltyPercentage,
		IsListed:          r.IsListed,
		Price:             r.Price,
		Seller:            r.ListingSeller,
		ListedAt:          r.ListedAt,
		MintedAt:          r.MintedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// FromResources maps a page of stored resources
func FromResources(rows []*schema.Resource) []*Resource {
	out := make([]*Resource, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromResource(r))
	}
	return out
}

// FromTransfers maps a resource's transfer history
func FromTransfers(rows []*schema.ResourceTransfer) []*Transfer {
	out := make([]*Transfer, 0, len(rows))
	for _, t := range rows {
		out = append(out, &Transfer{
			From:        t.FromAddress,
			To:          t.ToAddress,
			BlockNumber: t.BlockNumber,
			TxHash:      t.TxHash,
			Timestamp:   t.Timestamp,
		})
	}
	return out
}

// FromReferences maps citation rows
func FromReferences(rows []*schema.ResourceReference) []*Reference {
	out := make([]*Reference, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Reference{
			ReferenceID:   r.ReferenceID,
			SourceTokenID: r.SourceTokenID,
			TargetTokenID: r.TargetTokenID,
			Description:   r.Description,
			TxHash:        r.TxHash,
			Timestamp:     r.Timestamp,
		})
	}
	return out
}

// FromAccessToken maps a stored access grant to its API shape
func FromAccessToken(t *schema.AccessToken) *AccessToken {
	return &AccessToken{
		AccessTokenID:   t.AccessTokenID,
		ResourceTokenID: t.ResourceTokenID,
		Owner:           t.Owner,
		AccessType:      t.AccessType,
		ExpiryTime:      t.ExpiryTime,
		MaxUses:         t.MaxUses,
		UsedCount:       t.UsedCount,
		IsActive:        t.IsActive,
		Price:           t.Price,
	}
}
