package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
)

// ABI fragments for the three marketplace contracts, reduced to the events
// and functions this service touches.
const (
	resourceContractABI = `[
		{"type":"event","name":"ResourceMinted","inputs":[
			{"name":"creator","type":"address","indexed":true},
			{"name":"tokenId","type":"uint256","indexed":true},
			{"name":"title","type":"string","indexed":false},
			{"name":"description","type":"string","indexed":false},
			{"name":"ipfsHash","type":"string","indexed":false},
			{"name":"resourceType","type":"string","indexed":false},
			{"name":"authors","type":"address[]","indexed":false}]},
		{"type":"event","name":"Transfer","inputs":[
			{"name":"from","type":"address","indexed":true},
			{"name":"to","type":"address","indexed":true},
			{"name":"tokenId","type":"uint256","indexed":true}]},
		{"type":"event","name":"ReferenceCreated","inputs":[
			{"name":"referenceId","type":"uint256","indexed":true},
			{"name":"sourceTokenId","type":"uint256","indexed":true},
			{"name":"targetTokenId","type":"uint256","indexed":true},
			{"name":"description","type":"string","indexed":false}]},
		{"type":"function","name":"mintResource","stateMutability":"nonpayable","inputs":[
			{"name":"title","type":"string"},
			{"name":"description","type":"string"},
			{"name":"ipfsHash","type":"string"},
			{"name":"resourceType","type":"string"},
			{"name":"authors","type":"address[]"},
			{"name":"royaltyPercentage","type":"uint256"}],
			"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"createReference","stateMutability":"nonpayable","inputs":[
			{"name":"sourceTokenId","type":"uint256"},
			{"name":"targetTokenId","type":"uint256"},
			{"name":"description","type":"string"}],
			"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[
			{"name":"tokenId","type":"uint256"}],
			"outputs":[{"name":"","type":"address"}]},
		{"type":"function","name":"getApproved","stateMutability":"view","inputs":[
			{"name":"tokenId","type":"uint256"}],
			"outputs":[{"name":"","type":"address"}]},
		{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[
			{"name":"owner","type":"address"},
			{"name":"operator","type":"address"}],
			"outputs":[{"name":"","type":"bool"}]},
		{"type":"function","name":"royaltyPercentage","stateMutability":"view","inputs":[
			{"name":"tokenId","type":"uint256"}],
			"outputs":[{"name":"","type":"uint256"}]}]`

	marketContractABI = `[
		{"type":"event","name":"TokenListed","inputs":[
			{"name":"tokenId","type":"uint256","indexed":true},
			{"name":"seller","type":"address","indexed":true},
			{"name":"price","type":"uint256","indexed":false}]},
		{"type":"event","name":"TokenSold","inputs":[
			{"name":"tokenId","type":"uint256","indexed":true},
			{"name":"seller","type":"address","indexed":true},
			{"name":"buyer","type":"address","indexed":true},
			{"name":"price","type":"uint256","indexed":false}]},
		{"type":"event","name":"TokenUnlisted","inputs":[
			{"name":"tokenId","type":"uint256","indexed":true}]},
		{"type":"function","name":"listToken","stateMutability":"nonpayable","inputs":[
			{"name":"tokenId","type":"uint256"},
			{"name":"price","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"buyToken","stateMutability":"payable","inputs":[
			{"name":"tokenId","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"unlistToken","stateMutability":"nonpayable","inputs":[
			{"name":"tokenId","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"setCustomRoyaltyPercentage","stateMutability":"nonpayable","inputs":[
			{"name":"tokenId","type":"uint256"},
			{"name":"percentage","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"listings","stateMutability":"view","inputs":[
			{"name":"tokenId","type":"uint256"}],
			"outputs":[
			{"name":"seller","type":"address"},
			{"name":"price","type":"uint256"},
			{"name":"active","type":"bool"}]},
		{"type":"function","name":"getPurchaseBreakdown","stateMutability":"view","inputs":[
			{"name":"tokenId","type":"uint256"}],
			"outputs":[
			{"name":"price","type":"uint256"},
			{"name":"royaltyAmount","type":"uint256"},
			{"name":"platformFee","type":"uint256"},
			{"name":"sellerProceeds","type":"uint256"}]}]`

	accessContractABI = `[
		{"type":"event","name":"AccessTokenSold","inputs":[
			{"name":"resourceId","type":"uint256","indexed":true},
			{"name":"buyer","type":"address","indexed":true},
			{"name":"accessTokenId","type":"uint256","indexed":true},
			{"name":"price","type":"uint256","indexed":false}]},
		{"type":"event","name":"AccessTokenUsed","inputs":[
			{"name":"accessTokenId","type":"uint256","indexed":true},
			{"name":"user","type":"address","indexed":true}]},
		{"type":"event","name":"AccessTokenBurned","inputs":[
			{"name":"accessTokenId","type":"uint256","indexed":true}]},
		{"type":"function","name":"purchaseAccess","stateMutability":"payable","inputs":[
			{"name":"resourceId","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"useAccess","stateMutability":"nonpayable","inputs":[
			{"name":"accessTokenId","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"accessPrice","stateMutability":"view","inputs":[
			{"name":"resourceId","type":"uint256"}],
			"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"getAccessMetadata","stateMutability":"view","inputs":[
			{"name":"accessTokenId","type":"uint256"}],
			"outputs":[
			{"name":"accessType","type":"uint8"},
			{"name":"expiryTime","type":"uint256"},
			{"name":"maxUses","type":"uint256"},
			{"name":"usedCount","type":"uint256"},
			{"name":"isActive","type":"bool"}]}]`
)

// PurchaseBreakdown is the marketplace's cost split for buying a listed token
type PurchaseBreakdown struct {
	Price          *big.Int `json:"price"`
	RoyaltyAmount  *big.Int `json:"royaltyAmount"`
	PlatformFee    *big.Int `json:"platformFee"`
	SellerProceeds *big.Int `json:"sellerProceeds"`
}

// Listing is the marketplace's on-chain listing record for a token
type Listing struct {
	Seller string
	Price  *big.Int
	Active bool
}

// Registry holds the parsed contract ABIs and deployed addresses, and decodes
// raw logs into ChainEvents
type Registry struct {
	resource abi.ABI
	market   abi.ABI
	access   abi.ABI

	resourceAddr common.Address
	marketAddr   common.Address
	accessAddr   common.Address

	kindsByTopic map[common.Hash]domain.EventKind
}

// NewRegistry parses the contract ABIs and indexes event signatures
func NewRegistry(resourceAddr, marketAddr, accessAddr string) (*Registry, error) {
	resource, err := abi.JSON(strings.NewReader(resourceContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse resource contract ABI: %w", err)
	}
	market, err := abi.JSON(strings.NewReader(marketContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse market contract ABI: %w", err)
	}
	access, err := abi.JSON(strings.NewReader(accessContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse access contract ABI: %w", err)
	}

	r := &Registry{
		resource:     resource,
		market:       market,
		access:       access,
		resourceAddr: common.HexToAddress(resourceAddr),
		marketAddr:   common.HexToAddress(marketAddr),
		accessAddr:   common.HexToAddress(accessAddr),
		kindsByTopic: map[common.Hash]domain.EventKind{
			resource.Events["ResourceMinted"].ID:   domain.KindResourceMinted,
			resource.Events["Transfer"].ID:         domain.KindTransfer,
			resource.Events["ReferenceCreated"].ID: domain.KindReferenceCreated,
			market.Events["TokenListed"].ID:        domain.KindTokenListed,
			market.Events["TokenSold"].ID:          domain.KindTokenSold,
			market.Events["TokenUnlisted"].ID:      domain.KindTokenUnlisted,
			access.Events["AccessTokenSold"].ID:    domain.KindAccessTokenSold,
			access.Events["AccessTokenUsed"].ID:    domain.KindAccessTokenUsed,
			access.Events["AccessTokenBurned"].ID:  domain.KindAccessTokenBurned,
		},
	}
	return r, nil
}

// ResourceAddress returns the deployed resource contract address
func (r *Registry) ResourceAddress() common.Address { return r.resourceAddr }

// MarketAddress returns the deployed marketplace contract address
func (r *Registry) MarketAddress() common.Address { return r.marketAddr }

// AccessAddress returns the deployed access contract address
func (r *Registry) AccessAddress() common.Address { return r.accessAddr }

// Addresses returns the distinct deployed contract addresses
func (r *Registry) Addresses() []common.Address {
	addrs := []common.Address{r.resourceAddr}
	if r.marketAddr != r.resourceAddr {
		addrs = append(addrs, r.marketAddr)
	}
	if r.accessAddr != r.resourceAddr && r.accessAddr != r.marketAddr {
		addrs = append(addrs, r.accessAddr)
	}
	return addrs
}

// AddressForKind returns the contract that emits the given event kind
func (r *Registry) AddressForKind(kind domain.EventKind) common.Address {
	switch kind {
	case domain.KindResourceMinted, domain.KindTransfer, domain.KindReferenceCreated:
		return r.resourceAddr
	case domain.KindTokenListed, domain.KindTokenSold, domain.KindTokenUnlisted:
		return r.marketAddr
	default:
		return r.accessAddr
	}
}

// TopicForKind returns the event signature hash for the given kind
func (r *Registry) TopicForKind(kind domain.EventKind) common.Hash {
	for topic, k := range r.kindsByTopic {
		if k == kind {
			return topic
		}
	}
	return common.Hash{}
}

// KindForTopic returns the event kind for a signature hash, KindUnknown when
// the topic does not belong to any contract event
func (r *Registry) KindForTopic(topic common.Hash) domain.EventKind {
	return r.kindsByTopic[topic]
}

// DecodeLog decodes a raw log into a ChainEvent. Logs whose signature does
// not belong to any known contract event are skipped with a nil result.
func (r *Registry) DecodeLog(vLog types.Log, timestamp time.Time) (*domain.ChainEvent, error) {
	if len(vLog.Topics) == 0 {
		return nil, nil
	}

	kind := r.kindsByTopic[vLog.Topics[0]]
	if kind == domain.KindUnknown {
		return nil, nil
	}

	event := &domain.ChainEvent{
		Kind:        kind,
		Contract:    domain.NormalizeAddress(vLog.Address.Hex()),
		TxHash:      vLog.TxHash.Hex(),
		LogIndex:    vLog.Index,
		BlockNumber: vLog.BlockNumber,
		Timestamp:   timestamp,
	}

	switch kind {
	case domain.KindResourceMinted:
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid ResourceMinted event: expected 3 topics, got %d", len(vLog.Topics))
		}
		vals, err := r.resource.Unpack("ResourceMinted", vLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack ResourceMinted event: %w", err)
		}
		authors := vals[4].([]common.Address)
		authorAddrs := make([]string, len(authors))
		for i, a := range authors {
			authorAddrs[i] = domain.NormalizeAddress(a.Hex())
		}
		event.Mint = &domain.ResourceMintedEvent{
			Creator:      topicAddress(vLog.Topics[1]),
			TokenID:      topicUint64(vLog.Topics[2]),
			Title:        vals[0].(string),
			Description:  vals[1].(string),
			ContentHash:  vals[2].(string),
			ResourceType: vals[3].(string),
			Authors:      authorAddrs,
		}

	case domain.KindTransfer:
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid Transfer event: expected 4 topics, got %d", len(vLog.Topics))
		}
		event.Transfer = &domain.TransferEvent{
			From:    topicAddress(vLog.Topics[1]),
			To:      topicAddress(vLog.Topics[2]),
			TokenID: topicUint64(vLog.Topics[3]),
		}

	case domain.KindTokenListed:
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid TokenListed event: expected 3 topics, got %d", len(vLog.Topics))
		}
		vals, err := r.market.Unpack("TokenListed", vLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack TokenListed event: %w", err)
		}
		event.Listed = &domain.TokenListedEvent{
			TokenID: topicUint64(vLog.Topics[1]),
			Seller:  topicAddress(vLog.Topics[2]),
			Price:   vals[0].(*big.Int),
		}

	case domain.KindTokenSold:
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid TokenSold event: expected 4 topics, got %d", len(vLog.Topics))
		}
		vals, err := r.market.Unpack("TokenSold", vLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack TokenSold event: %w", err)
		}
		event.Sold = &domain.TokenSoldEvent{
			TokenID: topicUint64(vLog.Topics[1]),
			Seller:  topicAddress(vLog.Topics[2]),
			Buyer:   topicAddress(vLog.Topics[3]),
			Price:   vals[0].(*big.Int),
		}

	case domain.KindTokenUnlisted:
		if len(vLog.Topics) != 2 {
			return nil, fmt.Errorf("invalid TokenUnlisted event: expected 2 topics, got %d", len(vLog.Topics))
		}
		event.Unlisted = &domain.TokenUnlistedEvent{
			TokenID: topicUint64(vLog.Topics[1]),
		}

	case domain.KindReferenceCreated:
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid ReferenceCreated event: expected 4 topics, got %d", len(vLog.Topics))
		}
		vals, err := r.resource.Unpack("ReferenceCreated", vLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack ReferenceCreated event: %w", err)
		}
		event.Reference = &domain.ReferenceCreatedEvent{
			ReferenceID:   topicUint64(vLog.Topics[1]),
			SourceTokenID: topicUint64(vLog.Topics[2]),
			TargetTokenID: topicUint64(vLog.Topics[3]),
			Description:   vals[0].(string),
		}

	case domain.KindAccessTokenSold:
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid AccessTokenSold event: expected 4 topics, got %d", len(vLog.Topics))
		}
		vals, err := r.access.Unpack("AccessTokenSold", vLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack AccessTokenSold event: %w", err)
		}
		event.AccessSold = &domain.AccessTokenSoldEvent{
			ResourceID:    topicUint64(vLog.Topics[1]),
			Buyer:         topicAddress(vLog.Topics[2]),
			AccessTokenID: topicUint64(vLog.Topics[3]),
			Price:         vals[0].(*big.Int),
		}

	case domain.KindAccessTokenUsed:
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid AccessTokenUsed event: expected 3 topics, got %d", len(vLog.Topics))
		}
		event.AccessUsed = &domain.AccessTokenUsedEvent{
			AccessTokenID: topicUint64(vLog.Topics[1]),
			User:          topicAddress(vLog.Topics[2]),
		}

	case domain.KindAccessTokenBurned:
		if len(vLog.Topics) != 2 {
			return nil, fmt.Errorf("invalid AccessTokenBurned event: expected 2 topics, got %d", len(vLog.Topics))
		}
		event.AccessBurned = &domain.AccessTokenBurnedEvent{
			AccessTokenID: topicUint64(vLog.Topics[1]),
		}
	}

	return event, nil
}

// PackResourceCall encodes a call to the resource contract
func (r *Registry) PackResourceCall(method string, args ...any) ([]byte, error) {
	return r.resource.Pack(method, args...)
}

// PackMarketCall encodes a call to the marketplace contract
func (r *Registry) PackMarketCall(method string, args ...any) ([]byte, error) {
	return r.market.Pack(method, args...)
}

// PackAccessCall encodes a call to the access contract
func (r *Registry) PackAccessCall(method string, args ...any) ([]byte, error) {
	return r.access.Pack(method, args...)
}

// MintedTokenID extracts the token ID from the ResourceMinted log in a mint
// transaction receipt
func (r *Registry) MintedTokenID(receipt *types.Receipt) (uint64, error) {
	mintedID := r.resource.Events["ResourceMinted"].ID
	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) == 3 && vLog.Topics[0] == mintedID {
			return topicUint64(vLog.Topics[2]), nil
		}
	}
	return 0, fmt.Errorf("no ResourceMinted event in receipt %s", receipt.TxHash.Hex())
}

// CreatedReferenceID extracts the reference ID from the ReferenceCreated log
// in a citation transaction receipt
func (r *Registry) CreatedReferenceID(receipt *types.Receipt) (uint64, error) {
	createdID := r.resource.Events["ReferenceCreated"].ID
	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) == 4 && vLog.Topics[0] == createdID {
			return topicUint64(vLog.Topics[1]), nil
		}
	}
	return 0, fmt.Errorf("no ReferenceCreated event in receipt %s", receipt.TxHash.Hex())
}

// SoldAccessTokenID extracts the access token ID from the AccessTokenSold log
// in a purchase transaction receipt
func (r *Registry) SoldAccessTokenID(receipt *types.Receipt) (uint64, error) {
	soldID := r.access.Events["AccessTokenSold"].ID
	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) == 4 && vLog.Topics[0] == soldID {
			return topicUint64(vLog.Topics[3]), nil
		}
	}
	return 0, fmt.Errorf("no AccessTokenSold event in receipt %s", receipt.TxHash.Hex())
}

func (r *Registry) call(ctx context.Context, client Client, contract common.Address, ab abi.ABI, method string, args ...any) ([]any, error) {
	data, err := ab.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	vals, err := ab.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return vals, nil
}

// AccessMetadata reads the on-chain state of an access token
func (r *Registry) AccessMetadata(ctx context.Context, client Client, accessTokenID uint64) (*domain.AccessMetadata, error) {
	vals, err := r.call(ctx, client, r.accessAddr, r.access, "getAccessMetadata", new(big.Int).SetUint64(accessTokenID))
	if err != nil {
		return nil, err
	}

	return &domain.AccessMetadata{
		AccessType: domain.AccessType(vals[0].(uint8)),
		ExpiryTime: time.Unix(vals[1].(*big.Int).Int64(), 0).UTC(),
		MaxUses:    vals[2].(*big.Int).Uint64(),
		UsedCount:  vals[3].(*big.Int).Uint64(),
		IsActive:   vals[4].(bool),
	}, nil
}

// AccessPrice reads the price of an access grant for a resource
func (r *Registry) AccessPrice(ctx context.Context, client Client, resourceID uint64) (*big.Int, error) {
	vals, err := r.call(ctx, client, r.accessAddr, r.access, "accessPrice", new(big.Int).SetUint64(resourceID))
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

// GetListing reads the marketplace listing record for a token
func (r *Registry) GetListing(ctx context.Context, client Client, tokenID uint64) (*Listing, error) {
	vals, err := r.call(ctx, client, r.marketAddr, r.market, "listings", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, err
	}

	return &Listing{
		Seller: domain.NormalizeAddress(vals[0].(common.Address).Hex()),
		Price:  vals[1].(*big.Int),
		Active: vals[2].(bool),
	}, nil
}

// GetPurchaseBreakdown reads the marketplace's cost split for buying a token
func (r *Registry) GetPurchaseBreakdown(ctx context.Context, client Client, tokenID uint64) (*PurchaseBreakdown, error) {
	vals, err := r.call(ctx, client, r.marketAddr, r.market, "getPurchaseBreakdown", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, err
	}

	return &PurchaseBreakdown{
		Price:          vals[0].(*big.Int),
		RoyaltyAmount:  vals[1].(*big.Int),
		PlatformFee:    vals[2].(*big.Int),
		SellerProceeds: vals[3].(*big.Int),
	}, nil
}

// OwnerOf reads the current owner of a token from the resource contract
func (r *Registry) OwnerOf(ctx context.Context, client Client, tokenID uint64) (string, error) {
	vals, err := r.call(ctx, client, r.resourceAddr, r.resource, "ownerOf", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	return domain.NormalizeAddress(vals[0].(common.Address).Hex()), nil
}

// GetApproved reads the approved operator of a token
func (r *Registry) GetApproved(ctx context.Context, client Client, tokenID uint64) (string, error) {
	vals, err := r.call(ctx, client, r.resourceAddr, r.resource, "getApproved", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	return domain.NormalizeAddress(vals[0].(common.Address).Hex()), nil
}

// IsApprovedForAll reads whether an operator may move all of an owner's tokens
func (r *Registry) IsApprovedForAll(ctx context.Context, client Client, owner, operator string) (bool, error) {
	vals, err := r.call(ctx, client, r.resourceAddr, r.resource, "isApprovedForAll",
		common.HexToAddress(owner), common.HexToAddress(operator))
	if err != nil {
		return false, err
	}
	return vals[0].(bool), nil
}

// RoyaltyPercentage reads the creator royalty for a token
func (r *Registry) RoyaltyPercentage(ctx context.Context, client Client, tokenID uint64) (uint64, error) {
	vals, err := r.call(ctx, client, r.resourceAddr, r.resource, "royaltyPercentage", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return 0, err
	}
	return vals[0].(*big.Int).Uint64(), nil
}

func topicAddress(topic common.Hash) string {
	return domain.NormalizeAddress(common.BytesToAddress(topic.Bytes()).Hex())
}

func topicUint64(topic common.Hash) uint64 {
	return new(big.Int).SetBytes(topic.Bytes()).Uint64()
}
