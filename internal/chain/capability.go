package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

// CapabilitySet tracks which contract events the deployed contracts emit.
// The initial set comes from a versioned config descriptor and individual
// kinds can be disabled at runtime when the node rejects them.
type CapabilitySet struct {
	version string

	mu        sync.RWMutex
	supported map[domain.EventKind]bool
}

// CapabilitiesFromConfig builds a capability set from the config descriptor.
// Names are matched case-insensitively because the config loader lowercases
// map keys. An empty descriptor enables every known event. Unknown names are
// rejected so a typo cannot silently disable an event.
func CapabilitiesFromConfig(version string, names map[string]bool) (*CapabilitySet, error) {
	supported := make(map[domain.EventKind]bool, len(domain.EventKinds()))
	for _, kind := range domain.EventKinds() {
		supported[kind] = true
	}

	if len(names) > 0 {
		byName := make(map[string]domain.EventKind, len(supported))
		for _, kind := range domain.EventKinds() {
			byName[strings.ToLower(kind.String())] = kind
		}

		for name, enabled := range names {
			kind, ok := byName[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("unknown event in capability descriptor %q: %s", version, name)
			}
			supported[kind] = enabled
		}
	}

	return &CapabilitySet{version: version, supported: supported}, nil
}

// Version returns the descriptor version the set was built from
func (s *CapabilitySet) Version() string {
	return s.version
}

// Supports reports whether the event kind should be synced
func (s *CapabilitySet) Supports(kind domain.EventKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supported[kind]
}

// Disable turns off an event kind for the rest of the process lifetime.
// Called when the node rejects a filter or subscription for the kind.
func (s *CapabilitySet) Disable(ctx context.Context, kind domain.EventKind, reason error) {
	s.mu.Lock()
	changed := s.supported[kind]
	s.supported[kind] = false
	s.mu.Unlock()

	if changed {
		logger.WarnCtx(ctx, "Disabling unsupported event",
			zap.Stringer("event", kind),
			zap.String("capabilityVersion", s.version),
			zap.Error(reason))
	}
}

// SupportedKinds returns the currently enabled kinds in sync order
func (s *CapabilitySet) SupportedKinds() []domain.EventKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var kinds []domain.EventKind
	for _, kind := range domain.EventKinds() {
		if s.supported[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
