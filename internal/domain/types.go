package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ResourceType classifies the academic content behind a token
type ResourceType string

const (
	ResourceTypePaper   ResourceType = "paper"
	ResourceTypeDataset ResourceType = "dataset"
	ResourceTypeCode    ResourceType = "code"
	ResourceTypeOther   ResourceType = "other"
)

// AccessType represents the level of access granted by an access token
type AccessType uint8

const (
	AccessTypeRead AccessType = iota
	AccessTypeWrite
	AccessTypeFull
)

// String returns the string representation of the access type
func (a AccessType) String() string {
	switch a {
	case AccessTypeRead:
		return "read"
	case AccessTypeWrite:
		return "write"
	case AccessTypeFull:
		return "full"
	default:
		return "unknown"
	}
}

// AccessMetadata is the on-chain state of an access token as returned by the
// access contract's getAccessMetadata view
type AccessMetadata struct {
	AccessType AccessType
	ExpiryTime time.Time
	MaxUses    uint64
	UsedCount  uint64
	IsActive   bool
}

// Valid reports whether the metadata describes a usable access grant at the given time
func (m *AccessMetadata) Valid(now time.Time) bool {
	if !m.IsActive {
		return false
	}
	if m.ExpiryTime.Before(now) {
		return false
	}
	return m.UsedCount < m.MaxUses
}

// NormalizeAddress lowercases a hex address into the canonical storage form.
// Every address persisted or compared by this service goes through here.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}

// NormalizeAddresses normalizes a list of addresses in place
func NormalizeAddresses(addresses []string) []string {
	for i, address := range addresses {
		addresses[i] = NormalizeAddress(address)
	}
	return addresses
}

// SameAddress compares two addresses ignoring case and checksum form
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// IsZeroAddress reports whether the address is the zero address
func IsZeroAddress(address string) bool {
	return NormalizeAddress(address) == ZERO_ADDRESS
}
