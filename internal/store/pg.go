package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the database schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Resource{},
		&schema.ResourceTransfer{},
		&schema.ResourceSale{},
		&schema.ResourceReference{},
		&schema.AccessToken{},
		&schema.ProcessedEvent{},
		&schema.KeyValueStore{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values get reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// markProcessed inserts the idempotency row for an event inside the mutation's
// transaction. It returns false when the event was already applied. Rolling
// back the transaction also rolls back the idempotency row, so a failed
// mutation can be retried by a later resync.
func markProcessed(tx *gorm.DB, meta EventMeta) (bool, error) {
	processed := schema.ProcessedEvent{
		EventID:     meta.EventID,
		Kind:        meta.Kind,
		BlockNumber: meta.BlockNumber,
	}

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&processed)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record processed event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func getResourceForUpdate(tx *gorm.DB, tokenID uint64) (*schema.Resource, error) {
	var resource schema.Resource
	err := tx.Where("token_id = ?", tokenID).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("token %d: %w", tokenID, domain.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

// CreateResourceMint creates a resource and seeds its transfer history with
// the zero-address mint transfer in a single transaction
func (s *pgStore) CreateResourceMint(ctx context.Context, input CreateResourceMintInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		authors, err := json.Marshal(domain.NormalizeAddresses(input.Authors))
		if err != nil {
			return fmt.Errorf("failed to marshal authors: %w", err)
		}

		royalty := input.Royalty
		if royalty == 0 {
			royalty = domain.DEFAULT_ROYALTY_PERCENTAGE
		}

		creator := domain.NormalizeAddress(input.Creator)
		resource := schema.Resource{
			TokenID:           input.TokenID,
			Title:             input.Title,
			Description:       input.Description,
			ContentPointer:    input.ContentPointer,
			ResourceType:      input.ResourceType,
			Authors:           authors,
			Creator:           creator,
			CurrentOwner:      creator,
			LastTransferBlock: input.Meta.BlockNumber,
			RoyaltyPercentage: royalty,
			Price:             "0",
			MintedAt:          input.Meta.Timestamp,
		}

		// ON CONFLICT DO NOTHING on token_id keeps a resync over the mint
		// block from duplicating the row
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoNothing: true,
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(&resource).Error; err != nil {
			return fmt.Errorf("failed to create resource: %w", err)
		}

		// If resource.ID is 0 the row already existed, fetch it for the
		// transfer seed
		if resource.ID == 0 {
			if err := tx.Where("token_id = ?", input.TokenID).First(&resource).Error; err != nil {
				return fmt.Errorf("failed to get existing resource: %w", err)
			}
		}

		transfer := schema.ResourceTransfer{
			ResourceID:  resource.ID,
			FromAddress: domain.ZERO_ADDRESS,
			ToAddress:   creator,
			BlockNumber: input.Meta.BlockNumber,
			TxHash:      input.Meta.TxHash,
			Timestamp:   input.Meta.Timestamp,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return fmt.Errorf("failed to create mint transfer: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// ApplyTransfer appends a transfer and advances ownership when the transfer's
// block is not older than the one that set the current owner
func (s *pgStore) ApplyTransfer(ctx context.Context, input ApplyTransferInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		resource, err := getResourceForUpdate(tx, input.TokenID)
		if err != nil {
			return err
		}

		transfer := schema.ResourceTransfer{
			ResourceID:  resource.ID,
			FromAddress: domain.NormalizeAddress(input.From),
			ToAddress:   domain.NormalizeAddress(input.To),
			BlockNumber: input.Meta.BlockNumber,
			TxHash:      input.Meta.TxHash,
			Timestamp:   input.Meta.Timestamp,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		// Transfers can arrive out of order. Only the transfer with the
		// highest block number decides the current owner.
		if input.Meta.BlockNumber >= resource.LastTransferBlock {
			if err := tx.Model(resource).Updates(map[string]any{
				"current_owner":       transfer.ToAddress,
				"last_transfer_block": input.Meta.BlockNumber,
			}).Error; err != nil {
				return fmt.Errorf("failed to update owner: %w", err)
			}
		}

		applied = true
		return nil
	})
	return applied, err
}

// SetListing marks a resource as listed at a price
func (s *pgStore) SetListing(ctx context.Context, input SetListingInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		resource, err := getResourceForUpdate(tx, input.TokenID)
		if err != nil {
			return err
		}

		if err := tx.Model(resource).Updates(map[string]any{
			"is_listed":      true,
			"price":          input.Price,
			"listing_seller": domain.NormalizeAddress(input.Seller),
			"listed_at":      input.Meta.Timestamp,
		}).Error; err != nil {
			return fmt.Errorf("failed to set listing: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// RecordSale settles a sale in one transaction: records the sale row, appends
// the seller-to-buyer transfer, moves ownership and clears the listing
func (s *pgStore) RecordSale(ctx context.Context, input RecordSaleInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		resource, err := getResourceForUpdate(tx, input.TokenID)
		if err != nil {
			return err
		}

		seller := domain.NormalizeAddress(input.Seller)
		buyer := domain.NormalizeAddress(input.Buyer)

		sale := schema.ResourceSale{
			ResourceID:  resource.ID,
			Seller:      seller,
			Buyer:       buyer,
			Price:       input.Price,
			TxHash:      input.Meta.TxHash,
			BlockNumber: input.Meta.BlockNumber,
			Timestamp:   input.Meta.Timestamp,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		transfer := schema.ResourceTransfer{
			ResourceID:  resource.ID,
			FromAddress: seller,
			ToAddress:   buyer,
			BlockNumber: input.Meta.BlockNumber,
			TxHash:      input.Meta.TxHash,
			Timestamp:   input.Meta.Timestamp,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return fmt.Errorf("failed to create sale transfer: %w", err)
		}

		updates := map[string]any{
			"is_listed":      false,
			"price":          "0",
			"listing_seller": "",
			"listed_at":      nil,
		}
		if input.Meta.BlockNumber >= resource.LastTransferBlock {
			updates["current_owner"] = buyer
			updates["last_transfer_block"] = input.Meta.BlockNumber
		}
		if err := tx.Model(resource).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to settle sale: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// ClearListing removes a listing
func (s *pgStore) ClearListing(ctx context.Context, input ClearListingInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		resource, err := getResourceForUpdate(tx, input.TokenID)
		if err != nil {
			return err
		}

		if err := tx.Model(resource).Updates(map[string]any{
			"is_listed":      false,
			"price":          "0",
			"listing_seller": "",
			"listed_at":      nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to clear listing: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// AddReference records a citation link between two resources
func (s *pgStore) AddReference(ctx context.Context, input AddReferenceInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		// The citing resource must already exist so the link can be served
		// from its detail view
		if _, err := getResourceForUpdate(tx, input.SourceTokenID); err != nil {
			return err
		}

		reference := schema.ResourceReference{
			ReferenceID:   input.ReferenceID,
			SourceTokenID: input.SourceTokenID,
			TargetTokenID: input.TargetTokenID,
			Description:   input.Description,
			TxHash:        input.Meta.TxHash,
			BlockNumber:   input.Meta.BlockNumber,
			Timestamp:     input.Meta.Timestamp,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference_id"}},
			DoNothing: true,
		}).Create(&reference).Error; err != nil {
			return fmt.Errorf("failed to create reference: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// CreateAccessToken records a purchased access grant with its on-chain
// metadata snapshot
func (s *pgStore) CreateAccessToken(ctx context.Context, input CreateAccessTokenInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		token := schema.AccessToken{
			AccessTokenID:   input.AccessTokenID,
			ResourceTokenID: input.ResourceTokenID,
			Owner:           domain.NormalizeAddress(input.Owner),
			AccessType:      input.AccessType,
			ExpiryTime:      input.ExpiryTime,
			MaxUses:         input.MaxUses,
			UsedCount:       input.UsedCount,
			IsActive:        input.IsActive,
			Price:           input.Price,
			PurchasedAt:     input.Meta.Timestamp,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "access_token_id"}},
			DoNothing: true,
		}).Create(&token).Error; err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// UseAccessToken consumes one use of a grant, deactivating it at MaxUses
func (s *pgStore) UseAccessToken(ctx context.Context, input UseAccessTokenInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		var token schema.AccessToken
		if err := tx.Where("access_token_id = ?", input.AccessTokenID).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("access token %d: %w", input.AccessTokenID, domain.ErrAccessTokenNotFound)
			}
			return fmt.Errorf("failed to get access token: %w", err)
		}

		usedCount := token.UsedCount + 1
		updates := map[string]any{"used_count": usedCount}
		if usedCount >= token.MaxUses {
			updates["is_active"] = false
		}
		if err := tx.Model(&token).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to use access token: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// BurnAccessToken permanently deactivates a grant
func (s *pgStore) BurnAccessToken(ctx context.Context, input BurnAccessTokenInput) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := markProcessed(tx, input.Meta)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}

		var token schema.AccessToken
		if err := tx.Where("access_token_id = ?", input.AccessTokenID).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("access token %d: %w", input.AccessTokenID, domain.ErrAccessTokenNotFound)
			}
			return fmt.Errorf("failed to get access token: %w", err)
		}

		if err := tx.Model(&token).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to burn access token: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}

// UpdateRoyalty sets the creator royalty read back from the contract
func (s *pgStore) UpdateRoyalty(ctx context.Context, tokenID uint64, royalty int64) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Resource{}).
		Where("token_id = ?", tokenID).
		Update("royalty_percentage", royalty)
	if result.Error != nil {
		return fmt.Errorf("failed to update royalty: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("token %d: %w", tokenID, domain.ErrResourceNotFound)
	}
	return nil
}

// GetResourceByTokenID retrieves a resource by its on-chain token number
func (s *pgStore) GetResourceByTokenID(ctx context.Context, tokenID uint64) (*schema.Resource, error) {
	var resource schema.Resource
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

// resourceSortColumns maps ResourceQueryFilter.SortBy values onto columns
var resourceSortColumns = map[string]string{
	"":          "token_id",
	"token_id":  "token_id",
	"minted_at": "minted_at",
	"title":     "title",
}

// GetResourcesByFilter retrieves a page of resources and the total count
func (s *pgStore) GetResourcesByFilter(ctx context.Context, filter ResourceQueryFilter) ([]*schema.Resource, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Resource{})

	if filter.Owner != "" {
		query = query.Where("current_owner = ?", domain.NormalizeAddress(filter.Owner))
	}
	if filter.Creator != "" {
		query = query.Where("creator = ?", domain.NormalizeAddress(filter.Creator))
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ListedOnly {
		query = query.Where("is_listed = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}

	// Column names come from a fixed set, never from the request
	column, ok := resourceSortColumns[filter.SortBy]
	if !ok {
		column = "token_id"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query = query.Order(column + " " + direction)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var resources []*schema.Resource
	if err := query.Find(&resources).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get resources: %w", err)
	}

	return resources, uint64(total), nil
}

// GetTransfers retrieves a resource's transfer history ordered by block
func (s *pgStore) GetTransfers(ctx context.Context, tokenID uint64) ([]*schema.ResourceTransfer, error) {
	var transfers []*schema.ResourceTransfer
	err := s.db.WithContext(ctx).
		Joins("JOIN resources ON resources.id = resource_transfers.resource_id").
		Where("resources.token_id = ?", tokenID).
		Order("resource_transfers.block_number ASC, resource_transfers.id ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}
	return transfers, nil
}

// GetReferences retrieves the citations made by a resource
func (s *pgStore) GetReferences(ctx context.Context, sourceTokenID uint64) ([]*schema.ResourceReference, error) {
	var references []*schema.ResourceReference
	err := s.db.WithContext(ctx).
		Where("source_token_id = ?", sourceTokenID).
		Order("reference_id ASC").
		Find(&references).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get references: %w", err)
	}
	return references, nil
}

// GetCitations retrieves the citations pointing at a resource
func (s *pgStore) GetCitations(ctx context.Context, targetTokenID uint64) ([]*schema.ResourceReference, error) {
	var references []*schema.ResourceReference
	err := s.db.WithContext(ctx).
		Where("target_token_id = ?", targetTokenID).
		Order("reference_id ASC").
		Find(&references).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get citations: %w", err)
	}
	return references, nil
}

// GetSales retrieves a resource's sale history ordered by block
func (s *pgStore) GetSales(ctx context.Context, tokenID uint64) ([]*schema.ResourceSale, error) {
	var sales []*schema.ResourceSale
	err := s.db.WithContext(ctx).
		Joins("JOIN resources ON resources.id = resource_sales.resource_id").
		Where("resources.token_id = ?", tokenID).
		Order("resource_sales.block_number ASC, resource_sales.id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, nil
}

// GetAccessTokenByID retrieves an access grant by its on-chain identifier
func (s *pgStore) GetAccessTokenByID(ctx context.Context, accessTokenID uint64) (*schema.AccessToken, error) {
	var token schema.AccessToken
	err := s.db.WithContext(ctx).Where("access_token_id = ?", accessTokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return &token, nil
}

// GetAccessTokensByResource retrieves all grants covering a resource
func (s *pgStore) GetAccessTokensByResource(ctx context.Context, resourceTokenID uint64) ([]*schema.AccessToken, error) {
	var tokens []*schema.AccessToken
	err := s.db.WithContext(ctx).
		Where("resource_token_id = ?", resourceTokenID).
		Order("access_token_id ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get access tokens: %w", err)
	}
	return tokens, nil
}

// GetActiveAccessToken retrieves an owner's usable grant for a resource.
// Expiry is checked here because no chain event fires when a grant lapses,
// the row keeps is_active until a use or burn is indexed.
func (s *pgStore) GetActiveAccessToken(ctx context.Context, resourceTokenID uint64, owner string) (*schema.AccessToken, error) {
	var token schema.AccessToken
	err := s.db.WithContext(ctx).
		Where("resource_token_id = ? AND owner = ? AND is_active = ? AND expiry_time > ?",
			resourceTokenID, domain.NormalizeAddress(owner), true, time.Now().UTC()).
		Order("access_token_id DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active access token: %w", err)
	}
	return &token, nil
}

// HasProcessedEvent reports whether an event ID was already applied
func (s *pgStore) HasProcessedEvent(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.ProcessedEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return count > 0, nil
}
