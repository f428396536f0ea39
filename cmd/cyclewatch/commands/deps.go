package commands

import (
	"fmt"

	"github.com/jwpark/cyclewatch/internal/brain"
	"github.com/jwpark/cyclewatch/internal/data/repos"
	"github.com/jwpark/cyclewatch/internal/external/news"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/config"
	"github.com/jwpark/cyclewatch/pkg/database"
	"github.com/jwpark/cyclewatch/pkg/httputil"
	"github.com/jwpark/cyclewatch/pkg/logger"
	"github.com/jwpark/cyclewatch/pkg/redis"
)

// deps bundles everything a command needs after wiring.
// ⭐ SSOT: 의존성 조립은 여기서만
type deps struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *database.DB
	policy     *strategyconfig.Config
	policyHash string

	positions    *repos.PositionRepository
	runs         *repos.RunRepository
	orchestrator *brain.Orchestrator
}

// close releases held connections.
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
}

// loadPolicy resolves the strategy policy: the --policy flag wins, then the
// POLICY_PATH env, then the built-in baseline.
func loadPolicy(cfg *config.Config) (*strategyconfig.Config, string, error) {
	path := policyFile
	if path == "" {
		path = cfg.Policy.Path
	}

	var policy *strategyconfig.Config
	if path != "" {
		loaded, _, err := strategyconfig.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("load policy %s: %w", path, err)
		}
		policy = loaded
	} else {
		policy = strategyconfig.Default()
	}

	hash, err := strategyconfig.Hash(policy)
	if err != nil {
		return nil, "", fmt.Errorf("hash policy: %w", err)
	}

	return policy, hash, nil
}

// initDeps wires config, logging, storage, the news fetcher and the
// orchestrator for one command invocation.
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy policy
	policy, policyHash, err := loadPolicy(cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"policy_id":   policy.Meta.PolicyID,
		"policy_hash": policyHash[:12],
	}).Info("Strategy policy loaded")

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Redis cache (optional, no-op when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "cyclewatch")

	// 6. News fetcher over the shared HTTP client. With Redis up the
	// scrape rate limit is shared across processes.
	httpClient := httputil.New(cfg, log)
	if redisClient.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(redisClient, "cyclewatch"), redis.NewsRateLimit)
	}
	fetcher := news.NewFetcher(cfg.News, httpClient, cache, nil, log)

	// 7. Repositories
	snapshotRepo := repos.NewSnapshotRepository(db.Pool)
	positionRepo := repos.NewPositionRepository(db.Pool)
	runRepo := repos.NewRunRepository(db.Pool)

	// 8. Orchestrator
	orchestrator := brain.NewOrchestrator(policy, snapshotRepo, fetcher, runRepo, log)

	return &deps{
		cfg:          cfg,
		log:          log,
		db:           db,
		policy:       policy,
		policyHash:   policyHash,
		positions:    positionRepo,
		runs:         runRepo,
		orchestrator: orchestrator,
	}, nil
}
