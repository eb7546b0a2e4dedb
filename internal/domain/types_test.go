package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{
			name:     "checksummed address is lowercased",
			address:  "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
			expected: "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		{
			name:     "already lowercase is unchanged",
			address:  "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
			expected: "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		{
			name:     "uppercase hex is lowercased",
			address:  "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B",
			expected: "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		{
			name:     "zero address",
			address:  "0x0000000000000000000000000000000000000000",
			expected: ZERO_ADDRESS,
		},
		{
			name:     "empty string",
			address:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeAddress(tt.address))
		})
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(
		"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		"0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	))
	assert.False(t, SameAddress(
		"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		ZERO_ADDRESS,
	))
}

func TestIsZeroAddress(t *testing.T) {
	assert.True(t, IsZeroAddress(ZERO_ADDRESS))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsZeroAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b"))
}

func TestAccessMetadataValid(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		meta     AccessMetadata
		expected bool
	}{
		{
			name: "active with remaining uses",
			meta: AccessMetadata{
				AccessType: AccessTypeRead,
				ExpiryTime: now.Add(time.Hour),
				MaxUses:    10,
				UsedCount:  3,
				IsActive:   true,
			},
			expected: true,
		},
		{
			name: "inactive",
			meta: AccessMetadata{
				ExpiryTime: now.Add(time.Hour),
				MaxUses:    10,
				IsActive:   false,
			},
			expected: false,
		},
		{
			name: "expired",
			meta: AccessMetadata{
				ExpiryTime: now.Add(-time.Minute),
				MaxUses:    10,
				IsActive:   true,
			},
			expected: false,
		},
		{
			name: "exhausted",
			meta: AccessMetadata{
				ExpiryTime: now.Add(time.Hour),
				MaxUses:    5,
				UsedCount:  5,
				IsActive:   true,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meta.Valid(now))
		})
	}
}

func TestAccessTypeString(t *testing.T) {
	assert.Equal(t, "read", AccessTypeRead.String())
	assert.Equal(t, "write", AccessTypeWrite.String())
	assert.Equal(t, "full", AccessTypeFull.String())
	assert.Equal(t, "unknown", AccessType(99).String())
}
