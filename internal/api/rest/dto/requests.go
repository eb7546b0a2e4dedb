package dto

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MintResourceRequest is the body of POST /resources/mint
type MintResourceRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ContentHash  string   `json:"content_hash"`
	ResourceType string   `json:"resource_type"`
	Authors      []string `json:"authors"`
	Royalty      *int64   `json:"royalty_percentage"`
}

var resourceTypes = map[string]bool{
	"paper":   true,
	"dataset": true,
	"code":    true,
	"other":   true,
}

// Validate checks the mint request body
func (r *MintResourceRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.ContentHash == "" {
		return errors.New("content_hash is required")
	}
	if !resourceTypes[r.ResourceType] {
		return fmt.Errorf("resource_type must be one of paper, dataset, code, other")
	}
	for _, author := range r.Authors {
		if !common.IsHexAddress(author) {
			return fmt.Errorf("invalid author address: %s", author)
		}
	}
	return nil
}

// ListTokenRequest is the body of POST /market/list
type ListTokenRequest struct {
	TokenID   uint64 `json:"token_id"`
	Price     string `json:"price"`
	Signature string `json:"signature"`
}

// Validate checks the listing request body
func (r *ListTokenRequest) Validate() error {
	if r.Price == "" {
		return errors.New("price is required")
	}
	if r.Signature == "" {
		return errors.New("signature is required")
	}
	return nil
}

// BuyTokenRequest is the body of POST /market/buy
type BuyTokenRequest struct {
	TokenID   uint64 `json:"token_id"`
	Price     string `json:"price"`
	Signature string `json:"signature"`
}

// Validate checks the purchase request body
func (r *BuyTokenRequest) Validate() error {
	if r.Price == "" {
		return errors.New("price is required")
	}
	if r.Signature == "" {
		return errors.New("signature is required")
	}
	return nil
}

// UnlistTokenRequest is the body of POST /market/unlist
type UnlistTokenRequest struct {
	TokenID uint64 `json:"token_id"`
}

// CreateReferenceRequest is the body of POST /references
type CreateReferenceRequest struct {
	SourceTokenID uint64 `json:"source_token_id"`
	TargetTokenID uint64 `json:"target_token_id"`
	Description   string `json:"description"`
}

// Validate checks the citation request body
func (r *CreateReferenceRequest) Validate() error {
	if r.SourceTokenID == r.TargetTokenID {
		return errors.New("source_token_id and target_token_id must differ")
	}
	return nil
}

// PurchaseAccessRequest is the body of POST /access/purchase
type PurchaseAccessRequest struct {
	ResourceTokenID uint64 `json:"resource_token_id"`
	Signature       string `json:"signature"`
}

// Validate checks the access purchase request body
func (r *PurchaseAccessRequest) Validate() error {
	if r.Signature == "" {
		return errors.New("signature is required")
	}
	return nil
}

// UseAccessRequest is the body of POST /access/use
type UseAccessRequest struct {
	AccessTokenID uint64 `json:"access_token_id"`
	Signature     string `json:"signature"`
}

// Validate checks the access use request body
func (r *UseAccessRequest) Validate() error {
	if r.Signature == "" {
		return errors.New("signature is required")
	}
	return nil
}

// ResyncRequest is the body of POST /indexer/resync
type ResyncRequest struct {
	FromBlock uint64 `json:"from_block"`
	ToBlock   uint64 `json:"to_block"`
}

// Validate checks the resync request body
func (r *ResyncRequest) Validate() error {
	if r.FromBlock > r.ToBlock {
		return fmt.Errorf("from_block %d is past to_block %d", r.FromBlock, r.ToBlock)
	}
	return nil
}
