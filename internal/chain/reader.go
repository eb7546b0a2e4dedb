package chain

import (
	"context"

	"github.com/scholarly-labs/resource-indexer/internal/domain"
)

// AccessReader binds the registry's access metadata view to a client
// connection so consumers only see the one call they need
type AccessReader struct {
	client   Client
	registry *Registry
}

// NewAccessReader creates an access metadata reader
func NewAccessReader(client Client, registry *Registry) *AccessReader {
	return &AccessReader{client: client, registry: registry}
}

// AccessMetadata reads the on-chain state of an access token
func (r *AccessReader) AccessMetadata(ctx context.Context, accessTokenID uint64) (*domain.AccessMetadata, error) {
	return r.registry.AccessMetadata(ctx, r.client, accessTokenID)
}
