package domain

import (
	"fmt"
	"math/big"
	"time"
)

// EventKind identifies one of the contract events this service understands.
// The set is closed: the applier dispatches on it exhaustively and anything
// else is rejected at decode time.
type EventKind uint8

const (
	KindUnknown EventKind = iota
	KindResourceMinted
	KindTransfer
	KindTokenListed
	KindTokenSold
	KindTokenUnlisted
	KindReferenceCreated
	KindAccessTokenSold
	KindAccessTokenUsed
	KindAccessTokenBurned
)

// String returns the event name as emitted by the contracts
func (k EventKind) String() string {
	switch k {
	case KindResourceMinted:
		return "ResourceMinted"
	case KindTransfer:
		return "Transfer"
	case KindTokenListed:
		return "TokenListed"
	case KindTokenSold:
		return "TokenSold"
	case KindTokenUnlisted:
		return "TokenUnlisted"
	case KindReferenceCreated:
		return "ReferenceCreated"
	case KindAccessTokenSold:
		return "AccessTokenSold"
	case KindAccessTokenUsed:
		return "AccessTokenUsed"
	case KindAccessTokenBurned:
		return "AccessTokenBurned"
	default:
		return "Unknown"
	}
}

// EventKinds lists every supported kind in the order historical sync walks them
func EventKinds() []EventKind {
	return []EventKind{
		KindResourceMinted,
		KindTransfer,
		KindTokenListed,
		KindTokenSold,
		KindTokenUnlisted,
		KindReferenceCreated,
		KindAccessTokenSold,
		KindAccessTokenUsed,
		KindAccessTokenBurned,
	}
}

// ChainEvent is a decoded contract event. Exactly one payload pointer is
// non-nil and it matches Kind.
type ChainEvent struct {
	Kind        EventKind `json:"kind"`
	Contract    string    `json:"contract"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint      `json:"log_index"`
	BlockNumber uint64    `json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`

	Mint         *ResourceMintedEvent    `json:"mint,omitempty"`
	Transfer     *TransferEvent          `json:"transfer,omitempty"`
	Listed       *TokenListedEvent       `json:"listed,omitempty"`
	Sold         *TokenSoldEvent         `json:"sold,omitempty"`
	Unlisted     *TokenUnlistedEvent     `json:"unlisted,omitempty"`
	Reference    *ReferenceCreatedEvent  `json:"reference,omitempty"`
	AccessSold   *AccessTokenSoldEvent   `json:"access_sold,omitempty"`
	AccessUsed   *AccessTokenUsedEvent   `json:"access_used,omitempty"`
	AccessBurned *AccessTokenBurnedEvent `json:"access_burned,omitempty"`
}

// ID returns the idempotency key for this event. Two deliveries of the same
// log always produce the same ID.
func (e *ChainEvent) ID() string {
	return fmt.Sprintf("%s-%d", e.TxHash, e.LogIndex)
}

// ResourceMintedEvent carries the full metadata of a newly minted resource
type ResourceMintedEvent struct {
	Creator      string   `json:"creator"`
	TokenID      uint64   `json:"token_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ContentHash  string   `json:"content_hash"`
	ResourceType string   `json:"resource_type"`
	Authors      []string `json:"authors"`
}

// TransferEvent is an ERC-721 ownership transfer
type TransferEvent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID uint64 `json:"token_id"`
}

// TokenListedEvent marks a resource as for sale on the marketplace
type TokenListedEvent struct {
	TokenID uint64   `json:"token_id"`
	Seller  string   `json:"seller"`
	Price   *big.Int `json:"price"`
}

// TokenSoldEvent records a completed marketplace sale
type TokenSoldEvent struct {
	TokenID uint64   `json:"token_id"`
	Seller  string   `json:"seller"`
	Buyer   string   `json:"buyer"`
	Price   *big.Int `json:"price"`
}

// TokenUnlistedEvent removes a resource from sale
type TokenUnlistedEvent struct {
	TokenID uint64 `json:"token_id"`
}

// ReferenceCreatedEvent records a citation link between two resources
type ReferenceCreatedEvent struct {
	ReferenceID   uint64 `json:"reference_id"`
	SourceTokenID uint64 `json:"source_token_id"`
	TargetTokenID uint64 `json:"target_token_id"`
	Description   string `json:"description"`
}

// AccessTokenSoldEvent records the purchase of a usage grant for a resource
type AccessTokenSoldEvent struct {
	ResourceID    uint64   `json:"resource_id"`
	Buyer         string   `json:"buyer"`
	AccessTokenID uint64   `json:"access_token_id"`
	Price         *big.Int `json:"price"`
}

// AccessTokenUsedEvent records one consumption of an access grant
type AccessTokenUsedEvent struct {
	AccessTokenID uint64 `json:"access_token_id"`
	User          string `json:"user"`
}

// AccessTokenBurnedEvent permanently deactivates an access grant
type AccessTokenBurnedEvent struct {
	AccessTokenID uint64 `json:"access_token_id"`
}

// Valid checks that exactly the payload matching Kind is populated
func (e *ChainEvent) Valid() bool {
	if e.TxHash == "" {
		return false
	}

	switch e.Kind {
	case KindResourceMinted:
		return e.Mint != nil
	case KindTransfer:
		return e.Transfer != nil
	case KindTokenListed:
		return e.Listed != nil
	case KindTokenSold:
		return e.Sold != nil
	case KindTokenUnlisted:
		return e.Unlisted != nil
	case KindReferenceCreated:
		return e.Reference != nil
	case KindAccessTokenSold:
		return e.AccessSold != nil
	case KindAccessTokenUsed:
		return e.AccessUsed != nil
	case KindAccessTokenBurned:
		return e.AccessBurned != nil
	default:
		return false
	}
}
