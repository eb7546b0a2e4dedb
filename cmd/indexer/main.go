package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/api/middleware"
	"github.com/scholarly-labs/resource-indexer/internal/api/server"
	"github.com/scholarly-labs/resource-indexer/internal/applier"
	"github.com/scholarly-labs/resource-indexer/internal/cache"
	"github.com/scholarly-labs/resource-indexer/internal/chain"
	"github.com/scholarly-labs/resource-indexer/internal/config"
	"github.com/scholarly-labs/resource-indexer/internal/contractsvc"
	"github.com/scholarly-labs/resource-indexer/internal/indexer"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/ratelimit"
	"github.com/scholarly-labs/resource-indexer/internal/retry"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "resource-indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting resource indexer")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to run database migrations", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize stores
	dataStore := store.NewPGStore(db)
	checkpoints := store.NewCheckpointStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Connect to Redis
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	readCache := cache.NewRedisCache(redisClient, jsonAdapter, cfg.Cache.TTL)
	if err := readCache.Ping(ctx); err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}()
	logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Connect to the Ethereum provider
	policy := retry.NewPolicy(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, cfg.Retry.MaxAttempts)
	dialer := adapter.NewEthClientDialer()
	chainClient, err := chain.Connect(ctx, dialer, cfg.Ethereum.RPCURL, cfg.Ethereum.CallTimeout, policy)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Ethereum provider", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer chainClient.Close()
	logger.InfoCtx(ctx, "Connected to Ethereum provider", zap.String("rpc_url", cfg.Ethereum.RPCURL))

	// Log subscriptions need a websocket transport. When no websocket URL is
	// configured the RPC connection is shared, which only works against
	// providers that accept eth_subscribe over the primary endpoint.
	liveClient := chainClient
	if cfg.Ethereum.WebSocketURL != "" {
		liveClient, err = chain.Connect(ctx, dialer, cfg.Ethereum.WebSocketURL, cfg.Ethereum.CallTimeout, policy)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to Ethereum websocket", zap.Error(err), zap.String("websocket_url", cfg.Ethereum.WebSocketURL))
		}
		defer liveClient.Close()
		logger.InfoCtx(ctx, "Connected to Ethereum websocket", zap.String("websocket_url", cfg.Ethereum.WebSocketURL))
	} else {
		logger.WarnCtx(ctx, "No websocket URL configured, sharing the RPC connection for live subscriptions")
	}

	// Load the contract registry and capability descriptor
	registry, err := chain.NewRegistry(cfg.Contracts.ResourceAddress, cfg.Contracts.MarketAddress, cfg.Contracts.AccessAddress)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load contract registry", zap.Error(err))
	}
	caps, err := chain.CapabilitiesFromConfig(cfg.Contracts.CapabilityVersion, cfg.Contracts.Capabilities)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load capability descriptor", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Loaded contract registry",
		zap.String("resource_address", cfg.Contracts.ResourceAddress),
		zap.String("market_address", cfg.Contracts.MarketAddress),
		zap.String("access_address", cfg.Contracts.AccessAddress),
		zap.String("capability_version", caps.Version()),
	)

	// Wire the sync engine
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		MaxRequests: cfg.RateLimit.MaxRequests,
		TimeWindow:  cfg.RateLimit.TimeWindow,
		MinDelay:    cfg.RateLimit.MinDelay,
		BatchSize:   cfg.RateLimit.BatchSize,
		RetryDelay:  cfg.RateLimit.RetryDelay,
	}, clock)
	accessReader := chain.NewAccessReader(chainClient, registry)
	eventApplier := applier.New(dataStore, readCache, accessReader, cfg.Contracts.MarketAddress)
	historical := indexer.NewHistoricalSyncer(chainClient, registry, caps, limiter, eventApplier, checkpoints, clock, indexer.SyncConfig{
		ChunkSize:       cfg.Sync.ChunkSize,
		Cooldown:        cfg.Sync.RateLimitCooldown,
		DeploymentBlock: cfg.Ethereum.DeploymentBlock,
	})
	live := indexer.NewLiveSubscriber(liveClient, registry, caps, eventApplier, policy, clock, indexer.LiveConfig{
		PoolSize:  cfg.Worker.PoolSize,
		QueueSize: cfg.Worker.QueueSize,
	})
	engine := indexer.NewEngine(chainClient, historical, live, checkpoints, cfg.Sync.SkipHistorical)

	// Initialize the contract write service
	contracts, err := contractsvc.New(chainClient, registry, dataStore, engine, clock, contractsvc.Config{
		PrivateKey: cfg.Wallet.PrivateKey,
		ChainID:    cfg.Wallet.ChainID,
		GasLimit:   cfg.Wallet.GasLimit,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize contract service", zap.Error(err))
	}

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	srv := server.New(serverConfig, dataStore, readCache, contracts, engine)

	// Run the sync engine and the API server until either fails
	errCh := make(chan error, 2)
	go func() {
		if err := engine.Run(ctx); err != nil {
			errCh <- fmt.Errorf("sync engine: %w", err)
		}
	}()
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("Resource indexer stopped")
}
