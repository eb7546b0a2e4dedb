package applier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/cache"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

// AccessMetadataReader reads an access token's on-chain state. Purchase
// events only carry the token identifier, the grant terms live behind the
// contract's metadata view.
//
//go:generate mockgen -source=applier.go -destination=../mocks/applier.go -package=mocks -mock_names=AccessMetadataReader=MockAccessMetadataReader,Applier=MockApplier
type AccessMetadataReader interface {
	AccessMetadata(ctx context.Context, accessTokenID uint64) (*domain.AccessMetadata, error)
}

// Applier turns decoded chain events into database state. Apply is idempotent
// and safe to call with the same event any number of times, in any
// interleaving of historical and live delivery.
type Applier interface {
	Apply(ctx context.Context, event *domain.ChainEvent) error
}

type applier struct {
	store         store.Store
	cache         cache.Cache
	access        AccessMetadataReader
	marketAddress string
}

// New creates an applier. marketAddress is the marketplace contract address
// used to detect custody-held tokens in sale events.
func New(s store.Store, c cache.Cache, access AccessMetadataReader, marketAddress string) Applier {
	return &applier{
		store:         s,
		cache:         c,
		access:        access,
		marketAddress: domain.NormalizeAddress(marketAddress),
	}
}

// Apply dispatches one event to its handler. A missing referenced resource is
// logged and skipped rather than failing the batch: the event stays
// unprocessed, so a later resync over its block range can still apply it.
func (a *applier) Apply(ctx context.Context, event *domain.ChainEvent) error {
	if !event.Valid() {
		return fmt.Errorf("invalid event %s: %w", event.ID(), domain.ErrUnsupportedEvent)
	}

	var applied bool
	var err error

	switch event.Kind {
	case domain.KindResourceMinted:
		applied, err = a.applyMint(ctx, event)
	case domain.KindTransfer:
		applied, err = a.applyTransfer(ctx, event)
	case domain.KindTokenListed:
		applied, err = a.applyListed(ctx, event)
	case domain.KindTokenSold:
		applied, err = a.applySold(ctx, event)
	case domain.KindTokenUnlisted:
		applied, err = a.applyUnlisted(ctx, event)
	case domain.KindReferenceCreated:
		applied, err = a.applyReference(ctx, event)
	case domain.KindAccessTokenSold:
		applied, err = a.applyAccessSold(ctx, event)
	case domain.KindAccessTokenUsed:
		applied, err = a.applyAccessUsed(ctx, event)
	case domain.KindAccessTokenBurned:
		applied, err = a.applyAccessBurned(ctx, event)
	default:
		return fmt.Errorf("event %s: %w", event.ID(), domain.ErrUnsupportedEvent)
	}

	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) || errors.Is(err, domain.ErrAccessTokenNotFound) {
			logger.WarnCtx(ctx, "Event references unknown entity, skipping",
				zap.Stringer("kind", event.Kind),
				zap.String("eventID", event.ID()),
				zap.Error(err))
			return nil
		}
		return fmt.Errorf("apply %s %s: %w", event.Kind, event.ID(), err)
	}

	if !applied {
		logger.DebugCtx(ctx, "Duplicate event skipped",
			zap.Stringer("kind", event.Kind),
			zap.String("eventID", event.ID()))
	}
	return nil
}

func (a *applier) applyMint(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	mint := event.Mint

	applied, err := a.store.CreateResourceMint(ctx, store.CreateResourceMintInput{
		Meta:           store.MetaFromEvent(event),
		TokenID:        mint.TokenID,
		Title:          mint.Title,
		Description:    mint.Description,
		ContentPointer: mint.ContentHash,
		ResourceType:   mint.ResourceType,
		Authors:        mint.Authors,
		Creator:        mint.Creator,
	})

	// Invalidate even when the mutation failed. A transient store error can
	// leave readers with an entry the retry is about to change.
	a.cache.InvalidateResource(ctx, mint.TokenID)
	a.cache.InvalidateUserResources(ctx, mint.Creator)
	return applied, err
}

func (a *applier) applyTransfer(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	transfer := event.Transfer

	// Mint transfers are covered by the ResourceMinted handler, which seeds
	// the history in the same transaction that creates the resource
	if domain.IsZeroAddress(transfer.From) {
		logger.DebugCtx(ctx, "Skipping mint transfer",
			zap.Uint64("tokenID", transfer.TokenID),
			zap.String("eventID", event.ID()))
		return false, nil
	}

	applied, err := a.store.ApplyTransfer(ctx, store.ApplyTransferInput{
		Meta:    store.MetaFromEvent(event),
		TokenID: transfer.TokenID,
		From:    transfer.From,
		To:      transfer.To,
	})

	a.cache.InvalidateResource(ctx, transfer.TokenID)
	a.cache.InvalidateUserResources(ctx, transfer.From)
	a.cache.InvalidateUserResources(ctx, transfer.To)
	return applied, err
}

func (a *applier) applyListed(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	listed := event.Listed

	applied, err := a.store.SetListing(ctx, store.SetListingInput{
		Meta:    store.MetaFromEvent(event),
		TokenID: listed.TokenID,
		Seller:  listed.Seller,
		Price:   listed.Price.String(),
	})

	a.cache.InvalidateResource(ctx, listed.TokenID)
	return applied, err
}

func (a *applier) applySold(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	sold := event.Sold

	// The marketplace takes custody of the token for the sale, so some
	// deployments emit the market contract itself as the buyer. The token is
	// then handed back, making the seller the effective owner.
	owner := sold.Buyer
	if domain.SameAddress(sold.Buyer, a.marketAddress) {
		logger.DebugCtx(ctx, "Sale buyer is the marketplace, keeping seller as owner",
			zap.Uint64("tokenID", sold.TokenID),
			zap.String("eventID", event.ID()))
		owner = sold.Seller
	}

	applied, err := a.store.RecordSale(ctx, store.RecordSaleInput{
		Meta:    store.MetaFromEvent(event),
		TokenID: sold.TokenID,
		Seller:  sold.Seller,
		Buyer:   owner,
		Price:   sold.Price.String(),
	})

	a.cache.InvalidateResource(ctx, sold.TokenID)
	a.cache.InvalidateUserResources(ctx, sold.Seller)
	a.cache.InvalidateUserResources(ctx, owner)
	return applied, err
}

func (a *applier) applyUnlisted(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	unlisted := event.Unlisted

	applied, err := a.store.ClearListing(ctx, store.ClearListingInput{
		Meta:    store.MetaFromEvent(event),
		TokenID: unlisted.TokenID,
	})

	a.cache.InvalidateResource(ctx, unlisted.TokenID)
	return applied, err
}

func (a *applier) applyReference(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	reference := event.Reference

	applied, err := a.store.AddReference(ctx, store.AddReferenceInput{
		Meta:          store.MetaFromEvent(event),
		ReferenceID:   reference.ReferenceID,
		SourceTokenID: reference.SourceTokenID,
		TargetTokenID: reference.TargetTokenID,
		Description:   reference.Description,
	})

	a.cache.InvalidateResource(ctx, reference.SourceTokenID)
	a.cache.InvalidateResource(ctx, reference.TargetTokenID)
	return applied, err
}

func (a *applier) applyAccessSold(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	sold := event.AccessSold

	// The event only names the grant, its terms live in the contract
	metadata, err := a.access.AccessMetadata(ctx, sold.AccessTokenID)
	if err != nil {
		return false, fmt.Errorf("read access metadata for token %d: %w", sold.AccessTokenID, err)
	}

	applied, err := a.store.CreateAccessToken(ctx, store.CreateAccessTokenInput{
		Meta:            store.MetaFromEvent(event),
		AccessTokenID:   sold.AccessTokenID,
		ResourceTokenID: sold.ResourceID,
		Owner:           sold.Buyer,
		AccessType:      metadata.AccessType.String(),
		ExpiryTime:      metadata.ExpiryTime,
		MaxUses:         metadata.MaxUses,
		UsedCount:       metadata.UsedCount,
		IsActive:        metadata.IsActive,
		Price:           sold.Price.String(),
	})

	a.cache.InvalidateAccessToken(ctx, sold.AccessTokenID, sold.ResourceID)
	return applied, err
}

func (a *applier) applyAccessUsed(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	used := event.AccessUsed

	applied, err := a.store.UseAccessToken(ctx, store.UseAccessTokenInput{
		Meta:          store.MetaFromEvent(event),
		AccessTokenID: used.AccessTokenID,
	})

	a.invalidateAccess(ctx, used.AccessTokenID)
	return applied, err
}

func (a *applier) applyAccessBurned(ctx context.Context, event *domain.ChainEvent) (bool, error) {
	burned := event.AccessBurned

	applied, err := a.store.BurnAccessToken(ctx, store.BurnAccessTokenInput{
		Meta:          store.MetaFromEvent(event),
		AccessTokenID: burned.AccessTokenID,
	})

	a.invalidateAccess(ctx, burned.AccessTokenID)
	return applied, err
}

// invalidateAccess looks up the grant's resource so both the grant entry and
// the resource's access views are dropped
func (a *applier) invalidateAccess(ctx context.Context, accessTokenID uint64) {
	token, err := a.store.GetAccessTokenByID(ctx, accessTokenID)
	if err != nil || token == nil {
		a.cache.InvalidateAccessToken(ctx, accessTokenID, 0)
		return
	}
	a.cache.InvalidateAccessToken(ctx, accessTokenID, token.ResourceTokenID)
}
