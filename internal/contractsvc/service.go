package contractsvc

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/indexer"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

const (
	defaultGasLimit     = 500000
	receiptPollInterval = 2 * time.Second
	receiptTimeout      = 2 * time.Minute

	// resyncTail is how many blocks behind head a post-write resync starts
	resyncTail = 10
)

// Config holds the signing wallet and submission parameters
type Config struct {
	PrivateKey string
	ChainID    int64
	GasLimit   uint64
}

// MintInput describes a resource to mint
type MintInput struct {
	Title        string
	Description  string
	ContentHash  string
	ResourceType string
	Authors      []string
	Royalty      int64
}

// MintResult reports a completed mint
type MintResult struct {
	TokenID     uint64 `json:"token_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// ReferenceResult reports a completed citation
type ReferenceResult struct {
	ReferenceID uint64 `json:"reference_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// AccessPurchaseResult reports a completed access purchase
type AccessPurchaseResult struct {
	AccessTokenID uint64 `json:"access_token_id"`
	Price         string `json:"price"`
	TxHash        string `json:"tx_hash"`
	BlockNumber   uint64 `json:"block_number"`
}

// TxResult reports a wallet-submitted transaction
type TxResult struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// CallData is a prepared contract call for the client's own wallet to sign
// and submit. Preflight checks have already passed when it is returned.
type CallData struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}

// Service is the write path to the contracts: preflight validation, wallet
// transaction submission and client call-data preparation
//
//go:generate mockgen -source=service.go -destination=../mocks/contractsvcmocks/contractsvc.go -package=contractsvcmocks -mock_names=Service=MockContractService
type Service interface {
	// MintResource mints a resource from the service wallet and returns the
	// assigned token ID once the transaction is mined
	MintResource(ctx context.Context, input MintInput) (*MintResult, error)

	// ListToken validates a signed listing request and returns the listToken
	// call for the seller's wallet
	ListToken(ctx context.Context, tokenID uint64, priceETH, signature string) (*CallData, error)

	// BuyToken validates a signed purchase request and returns the payable
	// buyToken call for the buyer's wallet
	BuyToken(ctx context.Context, tokenID uint64, priceETH, signature string) (*CallData, error)

	// UnlistToken removes a listing through the service wallet
	UnlistToken(ctx context.Context, tokenID uint64) (*TxResult, error)

	// CreateReference records a citation between two resources
	CreateReference(ctx context.Context, sourceTokenID, targetTokenID uint64, description string) (*ReferenceResult, error)

	// PurchaseAccessToken buys an access grant for the signer
	PurchaseAccessToken(ctx context.Context, resourceTokenID uint64, signature string) (*AccessPurchaseResult, error)

	// UseAccess consumes one use of an access grant after validating it is
	// still usable
	UseAccess(ctx context.Context, accessTokenID uint64, signature string) (*TxResult, error)

	// PurchaseBreakdown returns the marketplace's cost split for a listing
	PurchaseBreakdown(ctx context.Context, tokenID uint64) (*chain.PurchaseBreakdown, error)
}

type service struct {
	client   chain.Client
	registry *chain.Registry
	store    store.Store
	engine   indexer.Engine
	clock    adapter.Clock

	key      *ecdsa.PrivateKey
	address  common.Address
	chainID  *big.Int
	gasLimit uint64
}

// New creates the contract service from the configured wallet key
func New(
	client chain.Client,
	registry *chain.Registry,
	st store.Store,
	engine indexer.Engine,
	clock adapter.Clock,
	cfg Config,
) (Service, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return &service{
		client:   client,
		registry: registry,
		store:    st,
		engine:   engine,
		clock:    clock,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(cfg.ChainID),
		gasLimit: gasLimit,
	}, nil
}

func (s *service) MintResource(ctx context.Context, input MintInput) (*MintResult, error) {
	if input.Royalty < domain.MIN_ROYALTY_PERCENTAGE || input.Royalty > domain.MAX_ROYALTY_PERCENTAGE {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRoyalty, input.Royalty)
	}

	authors := make([]common.Address, 0, len(input.Authors))
	for _, author := range input.Authors {
		if !common.IsHexAddress(author) {
			return nil, fmt.Errorf("invalid author address %q", author)
		}
		authors = append(authors, common.HexToAddress(author))
	}

	data, err := s.registry.PackResourceCall("mintResource",
		input.Title,
		input.Description,
		input.ContentHash,
		input.ResourceType,
		authors,
		big.NewInt(input.Royalty),
	)
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitTx(ctx, s.registry.ResourceAddress(), data, nil)
	if err != nil {
		return nil, err
	}

	tokenID, err := s.registry.MintedTokenID(receipt)
	if err != nil {
		return nil, err
	}

	// The marketplace keeps its own royalty table, so the mint is followed by
	// a setter transaction there. The mint already succeeded, so failures from
	// here on only cost accuracy until the next sync.
	s.setMarketRoyalty(ctx, tokenID, input.Royalty)

	s.resyncAfterWrite(ctx, receipt.BlockNumber.Uint64()-1)

	return &MintResult{
		TokenID:     tokenID,
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// setMarketRoyalty mirrors a minted token's royalty onto the marketplace
// contract and records the value the resource contract reports back. Every
// step is best effort, the caller's mint result stands regardless.
func (s *service) setMarketRoyalty(ctx context.Context, tokenID uint64, royalty int64) {
	data, err := s.registry.PackMarketCall("setCustomRoyaltyPercentage",
		new(big.Int).SetUint64(tokenID),
		big.NewInt(royalty),
	)
	if err != nil {
		logger.WarnCtx(ctx, "Could not pack royalty setter after mint",
			zap.Uint64("token_id", tokenID),
			zap.Error(err))
		return
	}
	if _, err := s.submitTx(ctx, s.registry.MarketAddress(), data, nil); err != nil {
		logger.WarnCtx(ctx, "Could not set marketplace royalty after mint",
			zap.Uint64("token_id", tokenID),
			zap.Int64("royalty", royalty),
			zap.Error(err))
		return
	}

	if onChain, err := s.registry.RoyaltyPercentage(ctx, s.client, tokenID); err != nil {
		logger.WarnCtx(ctx, "Could not read back royalty after mint",
			zap.Uint64("token_id", tokenID),
			zap.Error(err))
	} else if err := s.store.UpdateRoyalty(ctx, tokenID, int64(onChain)); err != nil {
		logger.WarnCtx(ctx, "Could not store royalty after mint",
			zap.Uint64("token_id", tokenID),
			zap.Error(err))
	}
}

func (s *service) ListToken(ctx context.Context, tokenID uint64, priceETH, signature string) (*CallData, error) {
	price, err := ethToWei(priceETH)
	if err != nil {
		return nil, err
	}

	signer, err := recoverSigner(fmt.Sprintf("List token %d for %s ETH", tokenID, priceETH), signature)
	if err != nil {
		return nil, err
	}

	owner, err := s.registry.OwnerOf(ctx, s.client, tokenID)
	if err != nil {
		return nil, err
	}
	if !domain.SameAddress(owner, signer) {
		return nil, domain.ErrNotOwner
	}

	if err := s.checkMarketApproval(ctx, tokenID, owner); err != nil {
		return nil, err
	}

	listing, err := s.registry.GetListing(ctx, s.client, tokenID)
	if err != nil {
		return nil, err
	}
	if listing.Active {
		return nil, domain.ErrAlreadyListed
	}

	data, err := s.registry.PackMarketCall("listToken", new(big.Int).SetUint64(tokenID), price)
	if err != nil {
		return nil, err
	}

	return &CallData{
		To:   domain.NormalizeAddress(s.registry.MarketAddress().Hex()),
		Data: hexutil.Encode(data),
	}, nil
}

func (s *service) BuyToken(ctx context.Context, tokenID uint64, priceETH, signature string) (*CallData, error) {
	price, err := ethToWei(priceETH)
	if err != nil {
		return nil, err
	}

	signer, err := recoverSigner(fmt.Sprintf("Buy token %d for %s ETH", tokenID, priceETH), signature)
	if err != nil {
		return nil, err
	}

	listing, err := s.registry.GetListing(ctx, s.client, tokenID)
	if err != nil {
		return nil, err
	}
	if !listing.Active {
		return nil, domain.ErrListingInactive
	}
	if listing.Price.Cmp(price) != 0 {
		return nil, fmt.Errorf("%w: listed at %s wei", domain.ErrPriceMismatch, listing.Price)
	}

	balance, err := s.client.BalanceAt(ctx, common.HexToAddress(signer), nil)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(price) < 0 {
		return nil, domain.ErrInsufficientBalance
	}

	data, err := s.registry.PackMarketCall("buyToken", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, err
	}

	return &CallData{
		To:    domain.NormalizeAddress(s.registry.MarketAddress().Hex()),
		Data:  hexutil.Encode(data),
		Value: price.String(),
	}, nil
}

func (s *service) UnlistToken(ctx context.Context, tokenID uint64) (*TxResult, error) {
	listing, err := s.registry.GetListing(ctx, s.client, tokenID)
	if err != nil {
		return nil, err
	}
	if !listing.Active {
		return nil, domain.ErrListingInactive
	}

	data, err := s.registry.PackMarketCall("unlistToken", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitTx(ctx, s.registry.MarketAddress(), data, nil)
	if err != nil {
		return nil, err
	}

	s.resyncAfterWrite(ctx, 0)

	return &TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *service) CreateReference(ctx context.Context, sourceTokenID, targetTokenID uint64, description string) (*ReferenceResult, error) {
	if sourceTokenID == targetTokenID {
		return nil, fmt.Errorf("resource %d cannot cite itself", sourceTokenID)
	}

	data, err := s.registry.PackResourceCall("createReference",
		new(big.Int).SetUint64(sourceTokenID),
		new(big.Int).SetUint64(targetTokenID),
		description,
	)
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitTx(ctx, s.registry.ResourceAddress(), data, nil)
	if err != nil {
		return nil, err
	}

	referenceID, err := s.registry.CreatedReferenceID(receipt)
	if err != nil {
		return nil, err
	}

	s.resyncAfterWrite(ctx, 0)

	return &ReferenceResult{
		ReferenceID: referenceID,
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *service) PurchaseAccessToken(ctx context.Context, resourceTokenID uint64, signature string) (*AccessPurchaseResult, error) {
	if _, err := recoverSigner(fmt.Sprintf("Purchase access for resource %d", resourceTokenID), signature); err != nil {
		return nil, err
	}

	price, err := s.registry.AccessPrice(ctx, s.client, resourceTokenID)
	if err != nil {
		return nil, err
	}
	if price.Sign() <= 0 {
		return nil, domain.ErrAccessUnavailable
	}

	balance, err := s.client.BalanceAt(ctx, s.address, nil)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(price) < 0 {
		return nil, domain.ErrInsufficientBalance
	}

	data, err := s.registry.PackAccessCall("purchaseAccess", new(big.Int).SetUint64(resourceTokenID))
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitTx(ctx, s.registry.AccessAddress(), data, price)
	if err != nil {
		return nil, err
	}

	accessTokenID, err := s.registry.SoldAccessTokenID(receipt)
	if err != nil {
		return nil, err
	}

	s.resyncAfterWrite(ctx, 0)

	return &AccessPurchaseResult{
		AccessTokenID: accessTokenID,
		Price:         price.String(),
		TxHash:        receipt.TxHash.Hex(),
		BlockNumber:   receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *service) UseAccess(ctx context.Context, accessTokenID uint64, signature string) (*TxResult, error) {
	signer, err := recoverSigner(fmt.Sprintf("Use access token %d", accessTokenID), signature)
	if err != nil {
		return nil, err
	}

	grant, err := s.store.GetAccessTokenByID(ctx, accessTokenID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, domain.ErrAccessTokenNotFound
	}
	if !domain.SameAddress(grant.Owner, signer) {
		return nil, domain.ErrSignatureMismatch
	}

	// Check the live contract state before spending gas on a doomed call
	metadata, err := s.registry.AccessMetadata(ctx, s.client, accessTokenID)
	if err != nil {
		return nil, err
	}
	if !metadata.IsActive {
		return nil, domain.ErrAccessInactive
	}
	if metadata.ExpiryTime.Before(s.clock.Now()) {
		return nil, domain.ErrAccessExpired
	}
	if metadata.UsedCount >= metadata.MaxUses {
		return nil, domain.ErrAccessExhausted
	}

	data, err := s.registry.PackAccessCall("useAccess", new(big.Int).SetUint64(accessTokenID))
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitTx(ctx, s.registry.AccessAddress(), data, nil)
	if err != nil {
		return nil, err
	}

	s.resyncAfterWrite(ctx, 0)

	return &TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *service) PurchaseBreakdown(ctx context.Context, tokenID uint64) (*chain.PurchaseBreakdown, error) {
	return s.registry.GetPurchaseBreakdown(ctx, s.client, tokenID)
}

// checkMarketApproval verifies the marketplace can move the token, either
// per-token or operator-wide
func (s *service) checkMarketApproval(ctx context.Context, tokenID uint64, owner string) error {
	market := s.registry.MarketAddress().Hex()

	approved, err := s.registry.GetApproved(ctx, s.client, tokenID)
	if err != nil {
		return err
	}
	if domain.SameAddress(approved, market) {
		return nil
	}

	operator, err := s.registry.IsApprovedForAll(ctx, s.client, owner, market)
	if err != nil {
		return err
	}
	if !operator {
		return domain.ErrNotApproved
	}
	return nil
}

// submitTx signs and sends a transaction from the service wallet and waits
// for it to be mined
func (s *service) submitTx(ctx context.Context, to common.Address, data []byte, value *big.Int) (*types.Receipt, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      s.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return nil, classifyTxError(err)
	}

	logger.InfoCtx(ctx, "Transaction submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce))

	return s.waitReceipt(ctx, signed.Hash())
}

// waitReceipt polls for the transaction receipt until mined or timed out
func (s *service) waitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	deadline := s.clock.Now().Add(receiptTimeout)
	for {
		receipt, err := s.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, domain.NewTxError(domain.TxErrorReverted,
					fmt.Errorf("transaction %s reverted", txHash.Hex()))
			}
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.clock.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for receipt of %s", txHash.Hex())
		}
		s.clock.Sleep(receiptPollInterval)
	}
}

// resyncAfterWrite replays a narrow window so the index reflects the write
// without waiting for the live stream. from=0 means the last few blocks.
func (s *service) resyncAfterWrite(ctx context.Context, from uint64) {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Skipping post-write resync, head unavailable", zap.Error(err))
		return
	}

	if from == 0 {
		if head > resyncTail {
			from = head - resyncTail
		}
	}
	if from > head {
		from = head
	}

	if err := s.engine.Resync(ctx, from, head); err != nil {
		// A concurrent sync covers the window anyway
		logger.WarnCtx(ctx, "Post-write resync not run",
			zap.Uint64("from_block", from),
			zap.Uint64("to_block", head),
			zap.Error(err))
	}
}

// recoverSigner returns the lowercased address that signed the given personal
// message
func recoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("%w: malformed signature", domain.ErrSignatureMismatch)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: signature must be %d bytes", domain.ErrSignatureMismatch, crypto.SignatureLength)
	}

	// Wallets return the legacy 27/28 recovery byte
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte{}, sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrSignatureMismatch, err)
	}
	return domain.NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// ethToWei converts a decimal ether amount to wei
func ethToWei(amount string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(amount)
	if !ok || rat.Sign() < 0 {
		return nil, fmt.Errorf("invalid price %q", amount)
	}

	wei := new(big.Rat).Mul(rat, new(big.Rat).SetInt(big.NewInt(1e18)))
	if !wei.IsInt() {
		return nil, fmt.Errorf("price %q has sub-wei precision", amount)
	}
	return wei.Num(), nil
}

// classifyTxError sorts a submission failure into the categories surfaced to
// API clients
func classifyTxError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return domain.NewTxError(domain.TxErrorInsufficientFunds, err)
	case strings.Contains(msg, "gas"):
		return domain.NewTxError(domain.TxErrorGas, err)
	case strings.Contains(msg, "revert"):
		return domain.NewTxError(domain.TxErrorReverted, err)
	default:
		return domain.NewTxError(domain.TxErrorUnknown, err)
	}
}
