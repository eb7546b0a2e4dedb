package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIndexerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *IndexerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
redis:
  addr: "localhost:6380"
  db: 2
ethereum:
  rpc_url: "http://localhost:8545"
  websocket_url: "ws://localhost:8545"
  deployment_block: 1000
contracts:
  resource_address: "0x1111111111111111111111111111111111111111"
  market_address: "0x2222222222222222222222222222222222222222"
  access_address: "0x3333333333333333333333333333333333333333"
rate_limit:
  max_requests: 500
  time_window: "2s"
retry:
  max_attempts: 3
sync:
  chunk_size: 250
`,
			expectError: false,
			validate: func(t *testing.T, cfg *IndexerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
				assert.Equal(t, 2, cfg.Redis.DB)
				assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
				assert.Equal(t, uint64(1000), cfg.Ethereum.DeploymentBlock)
				assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Contracts.ResourceAddress)
				assert.Equal(t, 500, cfg.RateLimit.MaxRequests)
				assert.Equal(t, 2*time.Second, cfg.RateLimit.TimeWindow)
				assert.Equal(t, 3, cfg.Retry.MaxAttempts)
				assert.Equal(t, uint64(250), cfg.Sync.ChunkSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
contracts:
  resource_address: "0x1111111111111111111111111111111111111111"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *IndexerConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, 30*time.Second, cfg.Ethereum.CallTimeout)
				assert.Equal(t, 1000, cfg.RateLimit.MaxRequests)
				assert.Equal(t, time.Second, cfg.RateLimit.TimeWindow)
				assert.Equal(t, 50*time.Millisecond, cfg.RateLimit.MinDelay)
				assert.Equal(t, uint64(1000), cfg.RateLimit.BatchSize)
				assert.Equal(t, time.Second, cfg.RateLimit.RetryDelay)
				assert.Equal(t, 5*time.Second, cfg.Retry.BaseDelay)
				assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
				assert.Equal(t, 5, cfg.Retry.MaxAttempts)
				assert.Equal(t, uint64(500), cfg.Sync.ChunkSize)
				assert.Equal(t, 10*time.Second, cfg.Sync.RateLimitCooldown)
				assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, uint64(500000), cfg.Wallet.GasLimit)
				assert.Equal(t, 20, cfg.Worker.PoolSize)
			},
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
contracts:
  resource_address: "0x1111111111111111111111111111111111111111"
`,
			expectError: true,
		},
		{
			name: "missing rpc url",
			configFile: `
database:
  host: localhost
  dbname: testdb
contracts:
  resource_address: "0x1111111111111111111111111111111111111111"
`,
			expectError: true,
		},
		{
			name: "missing resource contract",
			configFile: `
database:
  host: localhost
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.configFile), 0600))

			cfg, err := LoadIndexerConfig(configPath, dir)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "dbhost",
		Port:     5433,
		User:     "alice",
		Password: "secret",
		DBName:   "resources",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=dbhost port=5433 user=alice password=secret dbname=resources sslmode=require",
		cfg.DSN())
}

func TestCapabilityDescriptorParsing(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
database:
  host: localhost
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
contracts:
  resource_address: "0x1111111111111111111111111111111111111111"
  capability_version: "v2"
  capabilities:
    resourceminted: true
    transfer: true
    tokenlisted: false
`), 0600))

	cfg, err := LoadIndexerConfig(configPath, dir)
	require.NoError(t, err)

	// viper lowercases map keys; capability lookups are case-insensitive
	assert.Equal(t, "v2", cfg.Contracts.CapabilityVersion)
	assert.True(t, cfg.Contracts.Capabilities["resourceminted"])
	assert.False(t, cfg.Contracts.Capabilities["tokenlisted"])
}
