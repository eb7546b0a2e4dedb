package indexer

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/applier"
	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/ratelimit"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

const (
	// mainCheckpoint tracks the last fully indexed block across all event kinds
	mainCheckpoint = "main"

	defaultChunkSize = 500
	defaultCooldown  = 10 * time.Second
)

// SyncConfig holds historical sync tuning
type SyncConfig struct {
	// ChunkSize is the number of blocks covered by one round of log queries
	ChunkSize uint64
	// Cooldown is how long to back off after the provider rejects a chunk for
	// rate limiting, on top of the limiter's own retry
	Cooldown time.Duration
	// DeploymentBlock is where the first sync starts when no checkpoint exists
	DeploymentBlock uint64
}

// HistoricalSyncer replays contract events from the last checkpoint up to the
// chain head. At most one walk runs at a time.
//
//go:generate mockgen -source=historical.go -destination=../mocks/historical.go -package=mocks -mock_names=HistoricalSyncer=MockHistoricalSyncer
type HistoricalSyncer interface {
	// Sync walks from the checkpoint (or the deployment block) to the current
	// head. Returns domain.ErrSyncInProgress when another walk is running.
	Sync(ctx context.Context) error
	// ResyncRange re-reads a narrow block window without moving the checkpoint.
	// The processed-events gate makes replaying already applied logs a no-op.
	ResyncRange(ctx context.Context, from, to uint64) error
	// Running reports whether a walk is currently active
	Running() bool
}

type historicalSyncer struct {
	client      chain.Client
	registry    *chain.Registry
	caps        *chain.CapabilitySet
	limiter     ratelimit.Limiter
	applier     applier.Applier
	checkpoints store.CheckpointStore
	clock       adapter.Clock
	cfg         SyncConfig

	running atomic.Bool
}

// NewHistoricalSyncer creates a historical syncer, applying defaults for zero
// config values
func NewHistoricalSyncer(
	client chain.Client,
	registry *chain.Registry,
	caps *chain.CapabilitySet,
	limiter ratelimit.Limiter,
	eventApplier applier.Applier,
	checkpoints store.CheckpointStore,
	clock adapter.Clock,
	cfg SyncConfig,
) HistoricalSyncer {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	return &historicalSyncer{
		client:      client,
		registry:    registry,
		caps:        caps,
		limiter:     limiter,
		applier:     eventApplier,
		checkpoints: checkpoints,
		clock:       clock,
		cfg:         cfg,
	}
}

func (s *historicalSyncer) Running() bool {
	return s.running.Load()
}

func (s *historicalSyncer) Sync(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrSyncInProgress
	}
	defer s.running.Store(false)

	checkpoint, err := s.checkpoints.GetCheckpoint(ctx, mainCheckpoint)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	start := s.cfg.DeploymentBlock
	if checkpoint > 0 {
		start = checkpoint + 1
	}

	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get chain head: %w", err)
	}

	if start > head {
		logger.InfoCtx(ctx, "Historical sync already at head",
			zap.Uint64("checkpoint", checkpoint),
			zap.Uint64("head", head))
		return nil
	}

	logger.InfoCtx(ctx, "Starting historical sync",
		zap.Uint64("from_block", start),
		zap.Uint64("to_block", head),
		zap.Uint64("chunk_size", s.cfg.ChunkSize))

	failed := make(map[domain.EventKind]error)
	for from := start; from <= head; from += s.cfg.ChunkSize {
		to := from + s.cfg.ChunkSize - 1
		if to > head {
			to = head
		}

		if err := s.syncChunk(ctx, from, to, failed); err != nil {
			return err
		}
		// Checked before the checkpoint moves: a walk where no kind makes
		// progress must not skip past unindexed blocks.
		if err := s.walkResult(failed); err != nil {
			return err
		}

		if err := s.checkpoints.SetCheckpoint(ctx, mainCheckpoint, to); err != nil {
			return fmt.Errorf("save checkpoint at block %d: %w", to, err)
		}

		logger.DebugCtx(ctx, "Chunk indexed",
			zap.Uint64("from_block", from),
			zap.Uint64("to_block", to))
	}

	logger.InfoCtx(ctx, "Historical sync complete", zap.Uint64("head", head))
	return nil
}

func (s *historicalSyncer) ResyncRange(ctx context.Context, from, to uint64) error {
	if from > to {
		return fmt.Errorf("invalid resync range [%d, %d]", from, to)
	}
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrSyncInProgress
	}
	defer s.running.Store(false)

	logger.InfoCtx(ctx, "Resyncing block range",
		zap.Uint64("from_block", from),
		zap.Uint64("to_block", to))

	failed := make(map[domain.EventKind]error)
	for chunkFrom := from; chunkFrom <= to; chunkFrom += s.cfg.ChunkSize {
		chunkTo := chunkFrom + s.cfg.ChunkSize - 1
		if chunkTo > to {
			chunkTo = to
		}
		if err := s.syncChunk(ctx, chunkFrom, chunkTo, failed); err != nil {
			return err
		}
		if err := s.walkResult(failed); err != nil {
			return err
		}
	}
	return nil
}

// walkResult reduces one walk's per-kind failures. Partial progress is fine,
// only a walk where every kind failed surfaces as an error.
func (s *historicalSyncer) walkResult(failed map[domain.EventKind]error) error {
	kinds := s.caps.SupportedKinds()
	if len(failed) == 0 || len(failed) < len(kinds) {
		return nil
	}
	var last error
	for _, err := range failed {
		last = err
	}
	return fmt.Errorf("all %d event kinds failed, last: %w", len(failed), last)
}

// syncChunk queries and applies every supported event kind over one block
// range. A kind that errors is skipped for the remainder of the walk so the
// other kinds keep making progress instead of the whole walk stalling.
func (s *historicalSyncer) syncChunk(ctx context.Context, from, to uint64, failed map[domain.EventKind]error) error {
	timestamps := make(map[uint64]time.Time)

	for _, kind := range s.caps.SupportedKinds() {
		if _, skip := failed[kind]; skip {
			continue
		}
		if err := s.syncKindChunk(ctx, kind, from, to, timestamps); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed[kind] = err
			logger.WarnCtx(ctx, "Event kind failed, skipping it for the rest of this walk",
				zap.String("event", kind.String()),
				zap.Uint64("from_block", from),
				zap.Error(err))
		}
	}
	return nil
}

// syncKindChunk fetches and applies one event kind's logs over one block range
func (s *historicalSyncer) syncKindChunk(ctx context.Context, kind domain.EventKind, from, to uint64, timestamps map[uint64]time.Time) error {
	logs, err := s.filterKind(ctx, kind, from, to)
	if err != nil {
		return err
	}

	for _, vLog := range logs {
		if vLog.Removed {
			continue
		}

		timestamp, err := s.blockTimestamp(ctx, timestamps, vLog.BlockNumber)
		if err != nil {
			return fmt.Errorf("block %d timestamp: %w", vLog.BlockNumber, err)
		}

		event, err := s.registry.DecodeLog(vLog, timestamp)
		if err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("message", "Skipping undecodable log"),
				zap.String("tx_hash", vLog.TxHash.Hex()),
				zap.Uint("log_index", vLog.Index))
			continue
		}
		if event == nil {
			continue
		}

		if err := s.applier.Apply(ctx, event); err != nil {
			return fmt.Errorf("apply %s at block %d: %w", kind, vLog.BlockNumber, err)
		}
	}
	return nil
}

// filterKind fetches the logs of one event kind, splitting the range by the
// limiter's batch size so a wide resync window never exceeds one provider
// query's span
func (s *historicalSyncer) filterKind(ctx context.Context, kind domain.EventKind, from, to uint64) ([]types.Log, error) {
	var logs []types.Log
	for _, span := range s.limiter.SplitRange(from, to) {
		part, err := s.fetchSpan(ctx, kind, span.From, span.To)
		if err != nil {
			return nil, err
		}
		logs = append(logs, part...)
	}
	return logs, nil
}

// fetchSpan runs one FilterLogs query, backing off once on a provider rate
// limit before giving up
func (s *historicalSyncer) fetchSpan(ctx context.Context, kind domain.EventKind, from, to uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{s.registry.AddressForKind(kind)},
		Topics:    [][]common.Hash{{s.registry.TopicForKind(kind)}},
	}

	var logs []types.Log
	fetch := func() error {
		var err error
		logs, err = s.client.FilterLogs(ctx, query)
		return err
	}

	err := s.limiter.Do(ctx, "filter "+kind.String()+" logs", fetch)
	if err != nil && ratelimit.IsRateLimitError(err) {
		logger.WarnCtx(ctx, "Provider still rate limited, cooling down",
			zap.String("event", kind.String()),
			zap.Duration("cooldown", s.cfg.Cooldown))
		s.clock.Sleep(s.cfg.Cooldown)
		err = s.limiter.Do(ctx, "filter "+kind.String()+" logs", fetch)
	}
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// blockTimestamp resolves a block's timestamp, memoizing headers for the chunk
func (s *historicalSyncer) blockTimestamp(ctx context.Context, cache map[uint64]time.Time, blockNumber uint64) (time.Time, error) {
	if timestamp, ok := cache[blockNumber]; ok {
		return timestamp, nil
	}

	var header *types.Header
	err := s.limiter.Do(ctx, "get block header", func() error {
		var err error
		header, err = s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
		return err
	})
	if err != nil {
		return time.Time{}, err
	}

	timestamp := s.clock.Unix(int64(header.Time), 0).UTC() //nolint:gosec,G115 // block timestamps fit in int64
	cache[blockNumber] = timestamp
	return timestamp, nil
}
