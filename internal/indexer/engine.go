package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

// Health describes how far the index lags behind the chain
type Health struct {
	Head       uint64 `json:"head"`
	Checkpoint uint64 `json:"checkpoint"`
	Lag        uint64 `json:"lag"`
	Syncing    bool   `json:"syncing"`
}

// Engine drives event ingestion: one historical catch-up walk followed by the
// live websocket stream
//
//go:generate mockgen -source=engine.go -destination=../mocks/indexermocks/engine.go -package=indexermocks -mock_names=Engine=MockEngine
type Engine interface {
	// Run blocks until ctx is canceled or ingestion fails permanently
	Run(ctx context.Context) error
	// Resync replays a narrow block window, typically right after a write so
	// the index reflects it without waiting for the live stream
	Resync(ctx context.Context, from, to uint64) error
	// Health reports checkpoint lag against the current head
	Health(ctx context.Context) (*Health, error)
}

type engine struct {
	client         chain.Client
	historical     HistoricalSyncer
	live           LiveSubscriber
	checkpoints    store.CheckpointStore
	skipHistorical bool
}

// NewEngine wires the historical syncer and live subscriber into one runner
func NewEngine(
	client chain.Client,
	historical HistoricalSyncer,
	live LiveSubscriber,
	checkpoints store.CheckpointStore,
	skipHistorical bool,
) Engine {
	return &engine{
		client:         client,
		historical:     historical,
		live:           live,
		checkpoints:    checkpoints,
		skipHistorical: skipHistorical,
	}
}

func (e *engine) Run(ctx context.Context) error {
	if e.skipHistorical {
		logger.InfoCtx(ctx, "Skipping historical sync")
	} else {
		if err := e.historical.Sync(ctx); err != nil {
			return fmt.Errorf("historical sync: %w", err)
		}
	}

	logger.InfoCtx(ctx, "Starting live event stream")
	return e.live.Run(ctx)
}

func (e *engine) Resync(ctx context.Context, from, to uint64) error {
	return e.historical.ResyncRange(ctx, from, to)
}

func (e *engine) Health(ctx context.Context) (*Health, error) {
	head, err := e.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain head: %w", err)
	}

	checkpoint, err := e.checkpoints.GetCheckpoint(ctx, mainCheckpoint)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	health := &Health{
		Head:       head,
		Checkpoint: checkpoint,
		Syncing:    e.historical.Running(),
	}
	if head > checkpoint {
		health.Lag = head - checkpoint
	}

	logger.DebugCtx(ctx, "Index health",
		zap.Uint64("head", health.Head),
		zap.Uint64("checkpoint", health.Checkpoint),
		zap.Uint64("lag", health.Lag),
		zap.Bool("syncing", health.Syncing))
	return health, nil
}
