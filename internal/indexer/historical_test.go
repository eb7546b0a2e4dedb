package indexer

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/mocks"
	"github.com/scholarly-labs/resource-indexer/internal/ratelimit"
)

const (
	testResourceAddr = "0x1111111111111111111111111111111111111111"
	testMarketAddr   = "0x2222222222222222222222222222222222222222"
	testAccessAddr   = "0x3333333333333333333333333333333333333333"

	aliceAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bobAddr   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

func testRegistry(t *testing.T) *chain.Registry {
	t.Helper()
	registry, err := chain.NewRegistry(testResourceAddr, testMarketAddr, testAccessAddr)
	require.NoError(t, err)
	return registry
}

func testCapabilities(t *testing.T) *chain.CapabilitySet {
	t.Helper()
	caps, err := chain.CapabilitiesFromConfig("v1", nil)
	require.NoError(t, err)
	return caps
}

func addressTopic(addr string) common.Hash {
	return common.BytesToHash(common.HexToAddress(addr).Bytes())
}

func uintTopic(v uint64) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32))
}

func transferLog(registry *chain.Registry, blockNumber, tokenID uint64, from, to string) types.Log {
	return types.Log{
		Address: common.HexToAddress(testResourceAddr),
		Topics: []common.Hash{
			registry.TopicForKind(domain.KindTransfer),
			addressTopic(from),
			addressTopic(to),
			uintTopic(tokenID),
		},
		BlockNumber: blockNumber,
		TxHash:      common.HexToHash("0x01"),
		Index:       0,
	}
}

// passthroughLimiter wires the mock limiter so Do just runs the operation and
// SplitRange returns the range whole
func passthroughLimiter(ctrl *gomock.Controller) *mocks.MockLimiter {
	limiter := mocks.NewMockLimiter(ctrl)
	limiter.EXPECT().
		Do(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fn func() error) error {
			return fn()
		}).
		AnyTimes()
	limiter.EXPECT().
		SplitRange(gomock.Any(), gomock.Any()).
		DoAndReturn(func(from, to uint64) []ratelimit.BlockRange {
			return []ratelimit.BlockRange{{From: from, To: to}}
		}).
		AnyTimes()
	return limiter
}

func TestSyncAppliesEventsAndAdvancesCheckpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	caps := testCapabilities(t)
	client := mocks.NewMockChainClient(ctrl)
	eventApplier := mocks.NewMockApplier(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(0), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(110), nil)

	transferTopic := registry.TopicForKind(domain.KindTransfer)
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(100), query.FromBlock.Uint64())
			assert.Equal(t, uint64(110), query.ToBlock.Uint64())
			if query.Topics[0][0] == transferTopic {
				return []types.Log{transferLog(registry, 105, 7, aliceAddr, bobAddr)}, nil
			}
			return nil, nil
		}).
		Times(len(domain.EventKinds()))

	client.EXPECT().
		HeaderByNumber(gomock.Any(), big.NewInt(105)).
		Return(&types.Header{Time: 1700000000}, nil)

	var applied *domain.ChainEvent
	eventApplier.EXPECT().
		Apply(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ChainEvent) error {
			applied = event
			return nil
		})

	checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(110)).Return(nil)

	syncer := NewHistoricalSyncer(client, registry, caps, passthroughLimiter(ctrl), eventApplier, checkpoints, adapter.NewClock(), SyncConfig{
		ChunkSize:       500,
		DeploymentBlock: 100,
	})

	require.NoError(t, syncer.Sync(context.Background()))

	require.NotNil(t, applied)
	assert.Equal(t, domain.KindTransfer, applied.Kind)
	assert.Equal(t, uint64(7), applied.Transfer.TokenID)
	assert.Equal(t, aliceAddr, applied.Transfer.From)
	assert.Equal(t, bobAddr, applied.Transfer.To)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), applied.Timestamp)
}

func TestSyncResumesPastCheckpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	// Checkpoint at head, nothing to do
	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(200), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(200), nil)

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{
		DeploymentBlock: 100,
	})

	require.NoError(t, syncer.Sync(context.Background()))
}

func TestSyncWalksChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(0), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(112), nil)
	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	gomock.InOrder(
		checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(104)).Return(nil),
		checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(109)).Return(nil),
		checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(112)).Return(nil),
	)

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{
		ChunkSize:       5,
		DeploymentBlock: 100,
	})

	require.NoError(t, syncer.Sync(context.Background()))
}

func TestSyncSkipsFailedKindForWalkOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	caps := testCapabilities(t)
	client := mocks.NewMockChainClient(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(0), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(109), nil)

	// Two chunks. The reference kind fails in the first, so it is queried
	// once while every other kind is queried twice.
	referenceTopic := registry.TopicForKind(domain.KindReferenceCreated)
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			if query.Topics[0][0] == referenceTopic {
				return nil, errors.New("request timed out")
			}
			return nil, nil
		}).
		Times(len(domain.EventKinds())*2 - 1)

	gomock.InOrder(
		checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(104)).Return(nil),
		checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(109)).Return(nil),
	)

	syncer := NewHistoricalSyncer(client, registry, caps, passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{
		ChunkSize:       5,
		DeploymentBlock: 100,
	})

	require.NoError(t, syncer.Sync(context.Background()))

	// A transient failure never costs the kind its capability: the next walk
	// and the live path still cover it.
	assert.True(t, caps.Supports(domain.KindReferenceCreated))
	assert.True(t, caps.Supports(domain.KindTransfer))
}

func TestSyncFailsWhenEveryKindFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(0), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(100), nil)

	// The provider answers nothing. No SetCheckpoint expectation: a walk with
	// zero progress must not move past unindexed blocks.
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset")).
		Times(len(domain.EventKinds()))

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{
		DeploymentBlock: 100,
	})

	err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event kinds failed")
}

func TestSyncRejectsConcurrentRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	checkpoints.EXPECT().
		GetCheckpoint(gomock.Any(), "main").
		DoAndReturn(func(context.Context, string) (uint64, error) {
			close(started)
			<-release
			return 100, nil
		})
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(100), nil)

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{})

	done := make(chan error, 1)
	go func() {
		done <- syncer.Sync(context.Background())
	}()

	<-started
	assert.True(t, syncer.Running())
	assert.ErrorIs(t, syncer.Sync(context.Background()), domain.ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, syncer.Running())
}

func TestResyncRangeLeavesCheckpointAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)
	// No checkpoint expectations: a narrow replay must not read or move it
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(50), query.FromBlock.Uint64())
			assert.Equal(t, uint64(60), query.ToBlock.Uint64())
			return nil, nil
		}).
		Times(len(domain.EventKinds()))

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), checkpoints, adapter.NewClock(), SyncConfig{})

	require.NoError(t, syncer.ResyncRange(context.Background(), 50, 60))
}

func TestResyncRangeRejectsInvertedRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	syncer := NewHistoricalSyncer(mocks.NewMockChainClient(ctrl), testRegistry(t), testCapabilities(t), passthroughLimiter(ctrl), mocks.NewMockApplier(ctrl), mocks.NewMockCheckpointStore(ctrl), adapter.NewClock(), SyncConfig{})

	assert.Error(t, syncer.ResyncRange(context.Background(), 60, 50))
}

func TestSyncSkipsKindWhenApplyFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	client := mocks.NewMockChainClient(ctrl)
	eventApplier := mocks.NewMockApplier(ctrl)
	checkpoints := mocks.NewMockCheckpointStore(ctrl)

	checkpoints.EXPECT().GetCheckpoint(gomock.Any(), "main").Return(uint64(0), nil)
	client.EXPECT().BlockNumber(gomock.Any()).Return(uint64(100), nil)

	transferTopic := registry.TopicForKind(domain.KindTransfer)
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			if query.Topics[0][0] == transferTopic {
				return []types.Log{transferLog(registry, 100, 1, aliceAddr, bobAddr)}, nil
			}
			return nil, nil
		}).
		Times(len(domain.EventKinds()))
	client.EXPECT().
		HeaderByNumber(gomock.Any(), big.NewInt(100)).
		Return(&types.Header{Time: 1700000000}, nil)

	applyErr := errors.New("database gone")
	eventApplier.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(applyErr)

	// A failing store write drops only the transfer kind from this walk. The
	// other kinds finish and the checkpoint still advances.
	checkpoints.EXPECT().SetCheckpoint(gomock.Any(), "main", uint64(100)).Return(nil)

	syncer := NewHistoricalSyncer(client, registry, testCapabilities(t), passthroughLimiter(ctrl), eventApplier, checkpoints, adapter.NewClock(), SyncConfig{
		DeploymentBlock: 100,
	})

	require.NoError(t, syncer.Sync(context.Background()))
}

func TestResyncRangeSplitsByBatchSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)

	limiter := mocks.NewMockLimiter(ctrl)
	limiter.EXPECT().
		Do(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fn func() error) error {
			return fn()
		}).
		AnyTimes()
	limiter.EXPECT().
		SplitRange(uint64(50), uint64(60)).
		Return([]ratelimit.BlockRange{{From: 50, To: 54}, {From: 55, To: 60}}).
		Times(len(domain.EventKinds()))

	var spans [][2]uint64
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			spans = append(spans, [2]uint64{query.FromBlock.Uint64(), query.ToBlock.Uint64()})
			return nil, nil
		}).
		Times(len(domain.EventKinds()) * 2)

	syncer := NewHistoricalSyncer(client, testRegistry(t), testCapabilities(t), limiter, mocks.NewMockApplier(ctrl), mocks.NewMockCheckpointStore(ctrl), adapter.NewClock(), SyncConfig{})

	require.NoError(t, syncer.ResyncRange(context.Background(), 50, 60))
	assert.Contains(t, spans, [2]uint64{50, 54})
	assert.Contains(t, spans, [2]uint64{55, 60})
}
