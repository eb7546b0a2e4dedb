package store

import (
	"context"
	"time"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/store/schema"
)

// EventMeta carries the provenance of the chain event driving a mutation.
// EventID is the idempotency key; a mutation whose EventID was already
// recorded returns applied=false without touching any rows.
type EventMeta struct {
	EventID     string
	Kind        string
	TxHash      string
	BlockNumber uint64
	Timestamp   time.Time
}

// MetaFromEvent builds the mutation metadata for a decoded chain event
func MetaFromEvent(e *domain.ChainEvent) EventMeta {
	return EventMeta{
		EventID:     e.ID(),
		Kind:        e.Kind.String(),
		TxHash:      e.TxHash,
		BlockNumber: e.BlockNumber,
		Timestamp:   e.Timestamp,
	}
}

// CreateResourceMintInput creates a resource row and seeds its transfer
// history with the zero-address mint transfer
type CreateResourceMintInput struct {
	Meta           EventMeta
	TokenID        uint64
	Title          string
	Description    string
	ContentPointer string
	ResourceType   string
	Authors        []string
	Creator        string
	Royalty        int64
}

// ApplyTransferInput appends one transfer to a resource's history
type ApplyTransferInput struct {
	Meta    EventMeta
	TokenID uint64
	From    string
	To      string
}

// SetListingInput marks a resource as listed at a price
type SetListingInput struct {
	Meta    EventMeta
	TokenID uint64
	Seller  string
	Price   string
}

// RecordSaleInput settles a sale: records it, transfers ownership to the
// buyer and clears the listing. Buyer is the effective new owner, already
// resolved past the marketplace's custody address.
type RecordSaleInput struct {
	Meta    EventMeta
	TokenID uint64
	Seller  string
	Buyer   string
	Price   string
}

// ClearListingInput removes a resource's listing
type ClearListingInput struct {
	Meta    EventMeta
	TokenID uint64
}

// AddReferenceInput records a citation link between two resources
type AddReferenceInput struct {
	Meta          EventMeta
	ReferenceID   uint64
	SourceTokenID uint64
	TargetTokenID uint64
	Description   string
}

// CreateAccessTokenInput records a purchased access grant with its on-chain
// metadata snapshot
type CreateAccessTokenInput struct {
	Meta            EventMeta
	AccessTokenID   uint64
	ResourceTokenID uint64
	Owner           string
	AccessType      string
	ExpiryTime      time.Time
	MaxUses         uint64
	UsedCount       uint64
	IsActive        bool
	Price           string
}

// UseAccessTokenInput consumes one use of an access grant
type UseAccessTokenInput struct {
	Meta          EventMeta
	AccessTokenID uint64
}

// BurnAccessTokenInput permanently deactivates an access grant
type BurnAccessTokenInput struct {
	Meta          EventMeta
	AccessTokenID uint64
}

// ResourceQueryFilter selects resources for list queries. Zero values mean
// no constraint.
type ResourceQueryFilter struct {
	// Owner filters by current owner address, lowercased
	Owner string
	// Creator filters by minting address, lowercased
	Creator string
	// ResourceType filters by content classification
	ResourceType string
	// ListedOnly restricts to active marketplace listings
	ListedOnly bool
	// Limit caps the page size
	Limit int
	// Offset skips rows for pagination
	Offset int
	// SortBy names the sort column, one of "token_id", "minted_at" or
	// "title". Empty means token_id.
	SortBy string
	// SortDesc orders descending instead of ascending
	SortDesc bool
}

// Store is the primary data access interface. Event-driven mutations are
// transactional and idempotent: the returned bool reports whether the event
// was new and its changes were applied.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateResourceMint creates a resource and seeds its mint transfer
	CreateResourceMint(ctx context.Context, input CreateResourceMintInput) (bool, error)

	// ApplyTransfer appends a transfer and advances ownership when the
	// transfer's block is not older than the current owner's
	ApplyTransfer(ctx context.Context, input ApplyTransferInput) (bool, error)

	// SetListing marks a resource as listed
	SetListing(ctx context.Context, input SetListingInput) (bool, error)

	// RecordSale settles a sale and clears the listing
	RecordSale(ctx context.Context, input RecordSaleInput) (bool, error)

	// ClearListing removes a listing
	ClearListing(ctx context.Context, input ClearListingInput) (bool, error)

	// AddReference records a citation link
	AddReference(ctx context.Context, input AddReferenceInput) (bool, error)

	// CreateAccessToken records a purchased access grant
	CreateAccessToken(ctx context.Context, input CreateAccessTokenInput) (bool, error)

	// UseAccessToken consumes one use, deactivating the grant at MaxUses
	UseAccessToken(ctx context.Context, input UseAccessTokenInput) (bool, error)

	// BurnAccessToken permanently deactivates a grant
	BurnAccessToken(ctx context.Context, input BurnAccessTokenInput) (bool, error)

	// UpdateRoyalty sets the creator royalty read back from the contract
	UpdateRoyalty(ctx context.Context, tokenID uint64, royalty int64) error

	// GetResourceByTokenID retrieves a resource by its on-chain token number
	GetResourceByTokenID(ctx context.Context, tokenID uint64) (*schema.Resource, error)

	// GetResourcesByFilter retrieves a page of resources and the total count
	GetResourcesByFilter(ctx context.Context, filter ResourceQueryFilter) ([]*schema.Resource, uint64, error)

	// GetTransfers retrieves a resource's transfer history ordered by block
	GetTransfers(ctx context.Context, tokenID uint64) ([]*schema.ResourceTransfer, error)

	// GetReferences retrieves the citations made by a resource
	GetReferences(ctx context.Context, sourceTokenID uint64) ([]*schema.ResourceReference, error)

	// GetCitations retrieves the citations pointing at a resource
	GetCitations(ctx context.Context, targetTokenID uint64) ([]*schema.ResourceReference, error)

	// GetSales retrieves a resource's sale history ordered by block
	GetSales(ctx context.Context, tokenID uint64) ([]*schema.ResourceSale, error)

	// GetAccessTokenByID retrieves an access grant by its on-chain identifier
	GetAccessTokenByID(ctx context.Context, accessTokenID uint64) (*schema.AccessToken, error)

	// GetAccessTokensByResource retrieves all grants covering a resource
	GetAccessTokensByResource(ctx context.Context, resourceTokenID uint64) ([]*schema.AccessToken, error)

	// GetActiveAccessToken retrieves an owner's active grant for a resource
	GetActiveAccessToken(ctx context.Context, resourceTokenID uint64, owner string) (*schema.AccessToken, error)

	// HasProcessedEvent reports whether an event ID was already applied
	HasProcessedEvent(ctx context.Context, eventID string) (bool, error)
}
