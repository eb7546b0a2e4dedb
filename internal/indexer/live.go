package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/applier"
	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/retry"
)

const (
	defaultPoolSize  = 20
	defaultQueueSize = 2048
)

// errNoSupportedKinds ends reconnecting when every event kind has been
// disabled, a state no resubscribe can recover from
var errNoSupportedKinds = errors.New("no supported events left")

// LiveConfig holds the live subscription worker pool sizing
type LiveConfig struct {
	PoolSize  int
	QueueSize int
}

// LiveSubscriber streams contract events over a websocket subscription and
// applies them as they arrive
type LiveSubscriber interface {
	// Run blocks until ctx is canceled or reconnecting is exhausted. Dropped
	// subscriptions are re-established under the shared retry policy.
	Run(ctx context.Context) error
}

type liveSubscriber struct {
	client   chain.Client
	registry *chain.Registry
	caps     *chain.CapabilitySet
	applier  applier.Applier
	policy   retry.Policy
	clock    adapter.Clock
	cfg      LiveConfig

	// headers of recent blocks, shared across pool workers
	mu         sync.Mutex
	timestamps map[uint64]time.Time
}

// NewLiveSubscriber creates a live subscriber, applying defaults for zero
// config values
func NewLiveSubscriber(
	client chain.Client,
	registry *chain.Registry,
	caps *chain.CapabilitySet,
	eventApplier applier.Applier,
	policy retry.Policy,
	clock adapter.Clock,
	cfg LiveConfig,
) LiveSubscriber {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &liveSubscriber{
		client:     client,
		registry:   registry,
		caps:       caps,
		applier:    eventApplier,
		policy:     policy,
		clock:      clock,
		cfg:        cfg,
		timestamps: make(map[uint64]time.Time),
	}
}

func (s *liveSubscriber) Run(ctx context.Context) error {
	pool := pond.NewPool(
		s.cfg.PoolSize,
		pond.WithQueueSize(s.cfg.QueueSize),
		pond.WithContext(ctx),
	)
	defer func() {
		logger.InfoCtx(ctx, "Shutting down live event worker pool",
			zap.Uint64("submitted", pool.SubmittedTasks()),
			zap.Uint64("failed", pool.FailedTasks()))
		pool.StopAndWait()
	}()

	for {
		err := s.subscribeOnce(ctx, pool)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errNoSupportedKinds) {
			return fmt.Errorf("%w: %s", domain.ErrSubscriptionFailed, err)
		}

		logger.WarnCtx(ctx, "Live subscription dropped, reconnecting", zap.Error(err))

		if err := s.policy.Run(ctx, "reconnect event stream", func() error {
			return s.client.Reconnect(ctx)
		}); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrSubscriptionFailed, err)
		}
	}
}

// subscribeOnce holds one subscription open until it errors or ctx ends. The
// filter is rebuilt on every call so kinds disabled mid-run drop out of the
// registration.
func (s *liveSubscriber) subscribeOnce(ctx context.Context, pool pond.Pool) error {
	kinds := s.caps.SupportedKinds()
	if len(kinds) == 0 {
		return errNoSupportedKinds
	}

	topics := make([]common.Hash, 0, len(kinds))
	for _, kind := range kinds {
		topics = append(topics, s.registry.TopicForKind(kind))
	}
	query := ethereum.FilterQuery{
		Addresses: s.registry.Addresses(),
		Topics:    [][]common.Hash{topics},
	}

	logs := make(chan types.Log)
	sub, err := s.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSubscriptionFailed, err)
	}
	defer sub.Unsubscribe()

	logger.InfoCtx(ctx, "Live event subscription established",
		zap.Int("event_kinds", len(kinds)),
		zap.Int("contracts", len(query.Addresses)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case vLog := <-logs:
			pool.SubmitErr(func() error {
				return s.handleLog(ctx, vLog)
			})
		}
	}
}

func (s *liveSubscriber) handleLog(ctx context.Context, vLog types.Log) error {
	if vLog.Removed {
		// Reorged out, the re-emitted log will arrive on the new branch
		return nil
	}

	event, err := s.registry.DecodeLog(vLog, s.blockTimestamp(ctx, vLog.BlockNumber))
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Skipping undecodable live log"),
			zap.String("tx_hash", vLog.TxHash.Hex()),
			zap.Uint("log_index", vLog.Index))
		return nil
	}
	if event == nil || !s.caps.Supports(event.Kind) {
		return nil
	}

	if err := s.applier.Apply(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to apply live event"),
			zap.String("event", event.Kind.String()),
			zap.String("event_id", event.ID()))
		return err
	}
	return nil
}

// blockTimestamp resolves a live log's block time, falling back to wall clock
// when the header is not retrievable
func (s *liveSubscriber) blockTimestamp(ctx context.Context, blockNumber uint64) time.Time {
	s.mu.Lock()
	if timestamp, ok := s.timestamps[blockNumber]; ok {
		s.mu.Unlock()
		return timestamp
	}
	s.mu.Unlock()

	header, err := s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		logger.WarnCtx(ctx, "Falling back to local time for block timestamp",
			zap.Uint64("block_number", blockNumber),
			zap.Error(err))
		return s.clock.Now().UTC()
	}

	timestamp := s.clock.Unix(int64(header.Time), 0).UTC() //nolint:gosec,G115 // block timestamps fit in int64
	s.mu.Lock()
	if len(s.timestamps) > 128 {
		s.timestamps = make(map[uint64]time.Time)
	}
	s.timestamps[blockNumber] = timestamp
	s.mu.Unlock()
	return timestamp
}
