package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChainEventID(t *testing.T) {
	event := &ChainEvent{
		Kind:        KindTransfer,
		TxHash:      "0xabc123",
		LogIndex:    7,
		BlockNumber: 100,
	}

	assert.Equal(t, "0xabc123-7", event.ID())

	// Same log always yields the same key
	duplicate := &ChainEvent{TxHash: "0xabc123", LogIndex: 7}
	assert.Equal(t, event.ID(), duplicate.ID())

	// A different log index in the same transaction is a different event
	sibling := &ChainEvent{TxHash: "0xabc123", LogIndex: 8}
	assert.NotEqual(t, event.ID(), sibling.ID())
}

func TestChainEventValid(t *testing.T) {
	ts := time.Now()

	tests := []struct {
		name     string
		event    ChainEvent
		expected bool
	}{
		{
			name: "valid transfer",
			event: ChainEvent{
				Kind:        KindTransfer,
				TxHash:      "0xabc",
				BlockNumber: 1,
				Timestamp:   ts,
				Transfer:    &TransferEvent{From: "0x1", To: "0x2", TokenID: 1},
			},
			expected: true,
		},
		{
			name: "valid sold",
			event: ChainEvent{
				Kind:   KindTokenSold,
				TxHash: "0xabc",
				Sold:   &TokenSoldEvent{TokenID: 1, Seller: "0x1", Buyer: "0x2", Price: big.NewInt(100)},
			},
			expected: true,
		},
		{
			name: "kind without matching payload",
			event: ChainEvent{
				Kind:   KindTransfer,
				TxHash: "0xabc",
				Sold:   &TokenSoldEvent{TokenID: 1},
			},
			expected: false,
		},
		{
			name: "missing tx hash",
			event: ChainEvent{
				Kind:     KindTransfer,
				Transfer: &TransferEvent{From: "0x1", To: "0x2", TokenID: 1},
			},
			expected: false,
		},
		{
			name:     "unknown kind",
			event:    ChainEvent{Kind: KindUnknown, TxHash: "0xabc"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Valid())
		})
	}
}

func TestEventKindString(t *testing.T) {
	for _, kind := range EventKinds() {
		assert.NotEqual(t, "Unknown", kind.String())
	}
	assert.Equal(t, "ResourceMinted", KindResourceMinted.String())
	assert.Equal(t, "AccessTokenBurned", KindAccessTokenBurned.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
}

func TestEventKindsCoversAllKinds(t *testing.T) {
	kinds := EventKinds()
	assert.Len(t, kinds, 9)

	seen := make(map[EventKind]bool)
	for _, k := range kinds {
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
}
