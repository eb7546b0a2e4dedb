package indexer

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/mocks"
	"github.com/scholarly-labs/resource-indexer/internal/retry"
)

// fakeSubscription satisfies ethereum.Subscription for injected log streams
type fakeSubscription struct {
	errs chan error
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{errs: make(chan error, 1)}
}

func (s *fakeSubscription) Unsubscribe()      {}
func (s *fakeSubscription) Err() <-chan error { return s.errs }

func testPolicy() retry.Policy {
	return retry.NewPolicy(time.Millisecond, 2*time.Millisecond, 2)
}

func TestLiveAppliesStreamedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	caps := testCapabilities(t)
	client := mocks.NewMockChainClient(ctrl)
	eventApplier := mocks.NewMockApplier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := newFakeSubscription()
	client.EXPECT().
		SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
			assert.Len(t, query.Topics[0], len(domain.EventKinds()))
			go func() {
				ch <- transferLog(registry, 300, 9, aliceAddr, bobAddr)
			}()
			return sub, nil
		})
	client.EXPECT().
		HeaderByNumber(gomock.Any(), big.NewInt(300)).
		Return(&types.Header{Time: 1700000100}, nil)

	eventApplier.EXPECT().
		Apply(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ChainEvent) error {
			assert.Equal(t, domain.KindTransfer, event.Kind)
			assert.Equal(t, uint64(9), event.Transfer.TokenID)
			assert.Equal(t, time.Unix(1700000100, 0).UTC(), event.Timestamp)
			cancel()
			return nil
		})

	live := NewLiveSubscriber(client, registry, caps, eventApplier, testPolicy(), adapter.NewClock(), LiveConfig{PoolSize: 1, QueueSize: 8})

	assert.ErrorIs(t, live.Run(ctx), context.Canceled)
}

func TestLiveResubscribesAfterStreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	client := mocks.NewMockChainClient(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := newFakeSubscription()
	first.errs <- errors.New("connection reset")
	second := newFakeSubscription()

	gomock.InOrder(
		client.EXPECT().
			SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(first, nil),
		client.EXPECT().Reconnect(gomock.Any()).Return(nil),
		client.EXPECT().
			SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
				cancel()
				return second, nil
			}),
	)

	live := NewLiveSubscriber(client, registry, testCapabilities(t), mocks.NewMockApplier(ctrl), testPolicy(), adapter.NewClock(), LiveConfig{PoolSize: 1, QueueSize: 8})

	assert.ErrorIs(t, live.Run(ctx), context.Canceled)
}

func TestLiveGivesUpWhenReconnectExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockChainClient(ctrl)

	sub := newFakeSubscription()
	sub.errs <- errors.New("connection reset")
	client.EXPECT().
		SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(sub, nil)
	client.EXPECT().Reconnect(gomock.Any()).Return(errors.New("still down")).Times(2)

	live := NewLiveSubscriber(client, testRegistry(t), testCapabilities(t), mocks.NewMockApplier(ctrl), testPolicy(), adapter.NewClock(), LiveConfig{PoolSize: 1, QueueSize: 8})

	assert.ErrorIs(t, live.Run(context.Background()), domain.ErrSubscriptionFailed)
}

func TestLiveStopsWithoutSupportedKinds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caps := testCapabilities(t)
	for _, kind := range domain.EventKinds() {
		caps.Disable(context.Background(), kind, errors.New("deployment predates event"))
	}

	live := NewLiveSubscriber(mocks.NewMockChainClient(ctrl), testRegistry(t), caps, mocks.NewMockApplier(ctrl), testPolicy(), adapter.NewClock(), LiveConfig{})

	assert.ErrorIs(t, live.Run(context.Background()), domain.ErrSubscriptionFailed)
}

func TestLiveSkipsRemovedLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := testRegistry(t)
	client := mocks.NewMockChainClient(ctrl)
	// No Apply expectation: a reorged-out log must be dropped
	eventApplier := mocks.NewMockApplier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := newFakeSubscription()
	client.EXPECT().
		SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
			go func() {
				removed := transferLog(registry, 300, 9, aliceAddr, bobAddr)
				removed.Removed = true
				ch <- removed
				cancel()
			}()
			return sub, nil
		})

	live := NewLiveSubscriber(client, registry, testCapabilities(t), eventApplier, testPolicy(), adapter.NewClock(), LiveConfig{PoolSize: 1, QueueSize: 8})

	require.ErrorIs(t, live.Run(ctx), context.Canceled)
}
