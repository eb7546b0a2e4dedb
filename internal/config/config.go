package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EthereumConfig holds Ethereum node configuration
type EthereumConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	WebSocketURL    string        `mapstructure:"websocket_url"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	DeploymentBlock uint64        `mapstructure:"deployment_block"`
}

// ContractsConfig holds contract addresses and the optional capability descriptor
type ContractsConfig struct {
	ResourceAddress string `mapstructure:"resource_address"`
	MarketAddress   string `mapstructure:"market_address"`
	AccessAddress   string `mapstructure:"access_address"`

	// CapabilityVersion identifies the descriptor below. When Capabilities is
	// empty the supported event set is derived from the loaded ABIs instead.
	CapabilityVersion string          `mapstructure:"capability_version"`
	Capabilities      map[string]bool `mapstructure:"capabilities"`
}

// WalletConfig holds the signing wallet configuration for the write path
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	ChainID    int64  `mapstructure:"chain_id"`
	GasLimit   uint64 `mapstructure:"gas_limit"`
}

// RateLimitConfig holds provider request pacing configuration
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	TimeWindow  time.Duration `mapstructure:"time_window"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	BatchSize   uint64        `mapstructure:"batch_size"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// RetryConfig holds the shared exponential backoff policy
type RetryConfig struct {
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// SyncConfig holds historical sync configuration
type SyncConfig struct {
	ChunkSize         uint64        `mapstructure:"chunk_size"`
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
	SkipHistorical    bool          `mapstructure:"skip_historical"`
}

// CacheConfig holds read-cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds the live subscriber worker pool configuration
type WorkerConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// IndexerConfig holds the full configuration for the indexer process
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Ethereum   EthereumConfig  `mapstructure:"ethereum"`
	Contracts  ContractsConfig `mapstructure:"contracts"`
	Wallet     WalletConfig    `mapstructure:"wallet"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Retry      RetryConfig     `mapstructure:"retry"`
	Sync       SyncConfig      `mapstructure:"sync"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Server     ServerConfig    `mapstructure:"server"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Worker     WorkerConfig    `mapstructure:"worker"`
}

// LoadIndexerConfig loads configuration for the indexer process
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("indexer", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("ethereum.call_timeout", "30s")
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.time_window", "1s")
	v.SetDefault("rate_limit.min_delay", "50ms")
	v.SetDefault("rate_limit.batch_size", 1000)
	v.SetDefault("rate_limit.retry_delay", "1s")
	v.SetDefault("retry.base_delay", "5s")
	v.SetDefault("retry.max_delay", "30s")
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("sync.chunk_size", 500)
	v.SetDefault("sync.rate_limit_cooldown", "10s")
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("wallet.gas_limit", 500000)
	v.SetDefault("worker.pool_size", 20)
	v.SetDefault("worker.queue_size", 2048)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config IndexerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the required fields
func (c *IndexerConfig) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.Contracts.ResourceAddress == "" {
		return errors.New("contracts.resource_address is required")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/indexer/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("RESOURCE_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.websocket_url",
		"ethereum.call_timeout",
		"ethereum.deployment_block",
		// Contracts
		"contracts.resource_address",
		"contracts.market_address",
		"contracts.access_address",
		"contracts.capability_version",
		// Wallet
		"wallet.private_key",
		"wallet.chain_id",
		"wallet.gas_limit",
		// Rate limiting
		"rate_limit.max_requests",
		"rate_limit.time_window",
		"rate_limit.min_delay",
		"rate_limit.batch_size",
		"rate_limit.retry_delay",
		// Retry
		"retry.base_delay",
		"retry.max_delay",
		"retry.max_attempts",
		// Sync
		"sync.chunk_size",
		"sync.rate_limit_cooldown",
		"sync.skip_historical",
		// Cache
		"cache.ttl",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
