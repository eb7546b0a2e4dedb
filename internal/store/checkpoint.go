package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/scholarly-labs/resource-indexer/internal/store/schema"
)

// CheckpointStore persists sync progress so a restart resumes where the last
// run stopped instead of replaying from the deployment block
//
//go:generate mockgen -source=checkpoint.go -destination=../mocks/checkpoint_store.go -package=mocks -mock_names=CheckpointStore=MockCheckpointStore
type CheckpointStore interface {
	// GetCheckpoint returns the last fully processed block for a named
	// checkpoint, 0 when no checkpoint exists yet
	GetCheckpoint(ctx context.Context, name string) (uint64, error)

	// SetCheckpoint stores the last fully processed block
	SetCheckpoint(ctx context.Context, name string, blockNumber uint64) error
}

type kvCheckpointStore struct {
	db *gorm.DB
}

// NewCheckpointStore creates a checkpoint store backed by the key-value table
func NewCheckpointStore(db *gorm.DB) CheckpointStore {
	return &kvCheckpointStore{db: db}
}

// GetCheckpoint returns the last fully processed block for a named checkpoint
func (s *kvCheckpointStore) GetCheckpoint(ctx context.Context, name string) (uint64, error) {
	key := fmt.Sprintf("checkpoint:%s", name)

	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse checkpoint: %w", err)
	}

	return blockNumber, nil
}

// SetCheckpoint stores the last fully processed block
func (s *kvCheckpointStore) SetCheckpoint(ctx context.Context, name string, blockNumber uint64) error {
	key := fmt.Sprintf("checkpoint:%s", name)

	kv := schema.KeyValueStore{
		Key:   key,
		Value: strconv.FormatUint(blockNumber, 10),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	return nil
}
