package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
)

const (
	aliceAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bobAddr   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	carolAddr = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func testMeta(kind string, tx string, logIndex uint, block uint64) EventMeta {
	return EventMeta{
		EventID:     fmt.Sprintf("%s-%d", tx, logIndex),
		Kind:        kind,
		TxHash:      tx,
		BlockNumber: block,
		Timestamp:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(block) * time.Second),
	}
}

func buildMint(tokenID uint64, creator string, block uint64) CreateResourceMintInput {
	return CreateResourceMintInput{
		Meta:           testMeta("ResourceMinted", fmt.Sprintf("0xmint%d", tokenID), 0, block),
		TokenID:        tokenID,
		Title:          fmt.Sprintf("Paper %d", tokenID),
		Description:    "a description",
		ContentPointer: "QmTestHash",
		ResourceType:   "paper",
		Authors:        []string{creator},
		Creator:        creator,
	}
}

// RunStoreTests runs the store semantics suite against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) (Store, CheckpointStore)) {
	ctx := context.Background()

	t.Run("MintCreatesResourceWithSeedTransfer", func(t *testing.T) {
		s, _ := initDB(t)

		applied, err := s.CreateResourceMint(ctx, buildMint(1, aliceAddr, 100))
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err := s.GetResourceByTokenID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, resource)
		assert.Equal(t, "Paper 1", resource.Title)
		assert.Equal(t, aliceAddr, resource.Creator)
		assert.Equal(t, aliceAddr, resource.CurrentOwner)
		assert.Equal(t, uint64(100), resource.LastTransferBlock)
		assert.Equal(t, int64(domain.DEFAULT_ROYALTY_PERCENTAGE), resource.RoyaltyPercentage)
		assert.False(t, resource.IsListed)
		assert.Equal(t, "0", resource.Price)

		var authors []string
		require.NoError(t, json.Unmarshal(resource.Authors, &authors))
		assert.Equal(t, []string{aliceAddr}, authors)

		transfers, err := s.GetTransfers(ctx, 1)
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, domain.ZERO_ADDRESS, transfers[0].FromAddress)
		assert.Equal(t, aliceAddr, transfers[0].ToAddress)
	})

	t.Run("MintIsIdempotent", func(t *testing.T) {
		s, _ := initDB(t)

		input := buildMint(2, aliceAddr, 100)
		applied, err := s.CreateResourceMint(ctx, input)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = s.CreateResourceMint(ctx, input)
		require.NoError(t, err)
		assert.False(t, applied)

		transfers, err := s.GetTransfers(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, transfers, 1)
	})

	t.Run("TransferAdvancesOwner", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(3, aliceAddr, 100))
		require.NoError(t, err)

		applied, err := s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    testMeta("Transfer", "0xt1", 0, 110),
			TokenID: 3,
			From:    aliceAddr,
			To:      bobAddr,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err := s.GetResourceByTokenID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, bobAddr, resource.CurrentOwner)
		assert.Equal(t, uint64(110), resource.LastTransferBlock)
	})

	t.Run("StaleTransferKeepsNewestOwner", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(4, aliceAddr, 100))
		require.NoError(t, err)

		_, err = s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    testMeta("Transfer", "0xt2", 0, 130),
			TokenID: 4,
			From:    bobAddr,
			To:      carolAddr,
		})
		require.NoError(t, err)

		// The earlier hop arrives late. It must be recorded but not win.
		applied, err := s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    testMeta("Transfer", "0xt3", 0, 120),
			TokenID: 4,
			From:    aliceAddr,
			To:      bobAddr,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err := s.GetResourceByTokenID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, carolAddr, resource.CurrentOwner)
		assert.Equal(t, uint64(130), resource.LastTransferBlock)

		transfers, err := s.GetTransfers(ctx, 4)
		require.NoError(t, err)
		assert.Len(t, transfers, 3)
	})

	t.Run("TransferUnknownTokenRollsBackGate", func(t *testing.T) {
		s, _ := initDB(t)

		meta := testMeta("Transfer", "0xt4", 0, 100)
		_, err := s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    meta,
			TokenID: 999,
			From:    aliceAddr,
			To:      bobAddr,
		})
		require.ErrorIs(t, err, domain.ErrResourceNotFound)

		// The failed mutation must not consume the idempotency slot, so a
		// later resync can still apply the event
		processed, err := s.HasProcessedEvent(ctx, meta.EventID)
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("ListingLifecycle", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(5, aliceAddr, 100))
		require.NoError(t, err)

		applied, err := s.SetListing(ctx, SetListingInput{
			Meta:    testMeta("TokenListed", "0xl1", 0, 110),
			TokenID: 5,
			Seller:  aliceAddr,
			Price:   "1500000000000000000",
		})
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err := s.GetResourceByTokenID(ctx, 5)
		require.NoError(t, err)
		assert.True(t, resource.IsListed)
		assert.Equal(t, "1500000000000000000", resource.Price)
		assert.Equal(t, aliceAddr, resource.ListingSeller)
		require.NotNil(t, resource.ListedAt)
		assert.True(t, resource.ListedAt.Equal(testMeta("TokenListed", "0xl1", 0, 110).Timestamp))

		applied, err = s.ClearListing(ctx, ClearListingInput{
			Meta:    testMeta("TokenUnlisted", "0xl2", 0, 111),
			TokenID: 5,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err = s.GetResourceByTokenID(ctx, 5)
		require.NoError(t, err)
		assert.False(t, resource.IsListed)
		assert.Equal(t, "0", resource.Price)
		assert.Empty(t, resource.ListingSeller)
		assert.Nil(t, resource.ListedAt)
	})

	t.Run("SaleSettlesOwnershipAndListing", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(6, aliceAddr, 100))
		require.NoError(t, err)
		_, err = s.SetListing(ctx, SetListingInput{
			Meta:    testMeta("TokenListed", "0xl3", 0, 110),
			TokenID: 6,
			Seller:  aliceAddr,
			Price:   "2000000000000000000",
		})
		require.NoError(t, err)

		applied, err := s.RecordSale(ctx, RecordSaleInput{
			Meta:    testMeta("TokenSold", "0xs1", 0, 120),
			TokenID: 6,
			Seller:  aliceAddr,
			Buyer:   bobAddr,
			Price:   "2000000000000000000",
		})
		require.NoError(t, err)
		assert.True(t, applied)

		resource, err := s.GetResourceByTokenID(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, bobAddr, resource.CurrentOwner)
		assert.False(t, resource.IsListed)
		assert.Equal(t, "0", resource.Price)
		assert.Empty(t, resource.ListingSeller)
		assert.Nil(t, resource.ListedAt)

		sales, err := s.GetSales(ctx, 6)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, aliceAddr, sales[0].Seller)
		assert.Equal(t, bobAddr, sales[0].Buyer)
		assert.Equal(t, "2000000000000000000", sales[0].Price)

		transfers, err := s.GetTransfers(ctx, 6)
		require.NoError(t, err)
		assert.Len(t, transfers, 2)
	})

	t.Run("StaleSaleStillClearsListing", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(7, aliceAddr, 100))
		require.NoError(t, err)
		_, err = s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    testMeta("Transfer", "0xt5", 0, 150),
			TokenID: 7,
			From:    bobAddr,
			To:      carolAddr,
		})
		require.NoError(t, err)

		// A sale from an earlier block replayed during resync
		_, err = s.RecordSale(ctx, RecordSaleInput{
			Meta:    testMeta("TokenSold", "0xs2", 0, 120),
			TokenID: 7,
			Seller:  aliceAddr,
			Buyer:   bobAddr,
			Price:   "1000",
		})
		require.NoError(t, err)

		resource, err := s.GetResourceByTokenID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, carolAddr, resource.CurrentOwner)
		assert.False(t, resource.IsListed)
	})

	t.Run("References", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(8, aliceAddr, 100))
		require.NoError(t, err)
		_, err = s.CreateResourceMint(ctx, buildMint(9, bobAddr, 101))
		require.NoError(t, err)

		applied, err := s.AddReference(ctx, AddReferenceInput{
			Meta:          testMeta("ReferenceCreated", "0xr1", 0, 110),
			ReferenceID:   1,
			SourceTokenID: 9,
			TargetTokenID: 8,
			Description:   "extends the dataset",
		})
		require.NoError(t, err)
		assert.True(t, applied)

		refs, err := s.GetReferences(ctx, 9)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, uint64(8), refs[0].TargetTokenID)
		assert.Equal(t, "extends the dataset", refs[0].Description)

		citations, err := s.GetCitations(ctx, 8)
		require.NoError(t, err)
		require.Len(t, citations, 1)
		assert.Equal(t, uint64(9), citations[0].SourceTokenID)

		// Unknown citing resource rolls back
		_, err = s.AddReference(ctx, AddReferenceInput{
			Meta:          testMeta("ReferenceCreated", "0xr2", 0, 111),
			ReferenceID:   2,
			SourceTokenID: 999,
			TargetTokenID: 8,
		})
		assert.ErrorIs(t, err, domain.ErrResourceNotFound)
	})

	t.Run("AccessTokenLifecycle", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(10, aliceAddr, 100))
		require.NoError(t, err)

		expiry := time.Now().UTC().Add(24 * time.Hour)
		applied, err := s.CreateAccessToken(ctx, CreateAccessTokenInput{
			Meta:            testMeta("AccessTokenSold", "0xa1", 0, 110),
			AccessTokenID:   500,
			ResourceTokenID: 10,
			Owner:           bobAddr,
			AccessType:      "read",
			ExpiryTime:      expiry,
			MaxUses:         2,
			IsActive:        true,
			Price:           "25000000000000000",
		})
		require.NoError(t, err)
		assert.True(t, applied)

		token, err := s.GetAccessTokenByID(ctx, 500)
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, bobAddr, token.Owner)
		assert.True(t, token.IsActive)

		active, err := s.GetActiveAccessToken(ctx, 10, bobAddr)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, uint64(500), active.AccessTokenID)

		// First use stays active, second use exhausts the grant
		applied, err = s.UseAccessToken(ctx, UseAccessTokenInput{
			Meta:          testMeta("AccessTokenUsed", "0xa2", 0, 111),
			AccessTokenID: 500,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		token, err = s.GetAccessTokenByID(ctx, 500)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), token.UsedCount)
		assert.True(t, token.IsActive)

		_, err = s.UseAccessToken(ctx, UseAccessTokenInput{
			Meta:          testMeta("AccessTokenUsed", "0xa3", 0, 112),
			AccessTokenID: 500,
		})
		require.NoError(t, err)

		token, err = s.GetAccessTokenByID(ctx, 500)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), token.UsedCount)
		assert.False(t, token.IsActive)

		active, err = s.GetActiveAccessToken(ctx, 10, bobAddr)
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("ExpiredGrantIsNotActive", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(12, aliceAddr, 100))
		require.NoError(t, err)

		// No chain event fires when a grant lapses, so the row keeps
		// is_active until a use or burn is indexed
		_, err = s.CreateAccessToken(ctx, CreateAccessTokenInput{
			Meta:            testMeta("AccessTokenSold", "0xa7", 0, 110),
			AccessTokenID:   502,
			ResourceTokenID: 12,
			Owner:           bobAddr,
			AccessType:      "read",
			ExpiryTime:      time.Now().UTC().Add(-time.Hour),
			MaxUses:         5,
			IsActive:        true,
			Price:           "1",
		})
		require.NoError(t, err)

		token, err := s.GetAccessTokenByID(ctx, 502)
		require.NoError(t, err)
		assert.True(t, token.IsActive)

		active, err := s.GetActiveAccessToken(ctx, 12, bobAddr)
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("BurnAccessToken", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(11, aliceAddr, 100))
		require.NoError(t, err)
		_, err = s.CreateAccessToken(ctx, CreateAccessTokenInput{
			Meta:            testMeta("AccessTokenSold", "0xa4", 0, 110),
			AccessTokenID:   501,
			ResourceTokenID: 11,
			Owner:           bobAddr,
			AccessType:      "full",
			ExpiryTime:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			MaxUses:         100,
			IsActive:        true,
			Price:           "1",
		})
		require.NoError(t, err)

		applied, err := s.BurnAccessToken(ctx, BurnAccessTokenInput{
			Meta:          testMeta("AccessTokenBurned", "0xa5", 0, 111),
			AccessTokenID: 501,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		token, err := s.GetAccessTokenByID(ctx, 501)
		require.NoError(t, err)
		assert.False(t, token.IsActive)

		_, err = s.BurnAccessToken(ctx, BurnAccessTokenInput{
			Meta:          testMeta("AccessTokenBurned", "0xa6", 0, 112),
			AccessTokenID: 9999,
		})
		assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
	})

	t.Run("ResourceFilters", func(t *testing.T) {
		s, _ := initDB(t)

		for i := uint64(20); i < 25; i++ {
			_, err := s.CreateResourceMint(ctx, buildMint(i, aliceAddr, 100+i))
			require.NoError(t, err)
		}
		_, err := s.ApplyTransfer(ctx, ApplyTransferInput{
			Meta:    testMeta("Transfer", "0xt6", 0, 200),
			TokenID: 20,
			From:    aliceAddr,
			To:      bobAddr,
		})
		require.NoError(t, err)
		_, err = s.SetListing(ctx, SetListingInput{
			Meta:    testMeta("TokenListed", "0xl4", 0, 210),
			TokenID: 21,
			Seller:  aliceAddr,
			Price:   "10",
		})
		require.NoError(t, err)

		listed, total, err := s.GetResourcesByFilter(ctx, ResourceQueryFilter{ListedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, listed, 1)
		assert.Equal(t, uint64(21), listed[0].TokenID)

		owned, total, err := s.GetResourcesByFilter(ctx, ResourceQueryFilter{Owner: aliceAddr})
		require.NoError(t, err)
		assert.Equal(t, uint64(4), total)
		assert.Len(t, owned, 4)

		page, total, err := s.GetResourcesByFilter(ctx, ResourceQueryFilter{Limit: 2, Offset: 2, SortDesc: true})
		require.NoError(t, err)
		assert.Equal(t, uint64(5), total)
		require.Len(t, page, 2)
		assert.Equal(t, uint64(22), page[0].TokenID)

		byTitle, _, err := s.GetResourcesByFilter(ctx, ResourceQueryFilter{SortBy: "title", SortDesc: true})
		require.NoError(t, err)
		require.Len(t, byTitle, 5)
		assert.Equal(t, "Paper 24", byTitle[0].Title)

		byMint, _, err := s.GetResourcesByFilter(ctx, ResourceQueryFilter{SortBy: "minted_at"})
		require.NoError(t, err)
		require.Len(t, byMint, 5)
		assert.Equal(t, uint64(20), byMint[0].TokenID)
	})

	t.Run("UpdateRoyalty", func(t *testing.T) {
		s, _ := initDB(t)

		_, err := s.CreateResourceMint(ctx, buildMint(30, aliceAddr, 100))
		require.NoError(t, err)

		require.NoError(t, s.UpdateRoyalty(ctx, 30, 12))
		resource, err := s.GetResourceByTokenID(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(12), resource.RoyaltyPercentage)

		assert.ErrorIs(t, s.UpdateRoyalty(ctx, 999, 12), domain.ErrResourceNotFound)
	})

	t.Run("Checkpoints", func(t *testing.T) {
		_, cs := initDB(t)

		block, err := cs.GetCheckpoint(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), block)

		require.NoError(t, cs.SetCheckpoint(ctx, "main", 12345))
		block, err = cs.GetCheckpoint(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, uint64(12345), block)

		require.NoError(t, cs.SetCheckpoint(ctx, "main", 12400))
		block, err = cs.GetCheckpoint(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, uint64(12400), block)
	})
}
