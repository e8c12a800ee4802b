package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/ai"
	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/checkprioritizer/internal/adapters/driven/redis"
	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/checkprioritizer/internal/config"
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driving"
	"github.com/custodia-labs/checkprioritizer/internal/core/services"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

// backend is the opened index plus the optional shared infrastructure
type backend struct {
	index     driven.VectorIndex
	indexName string
	db        *postgres.DB  // nil for sqlite
	redis     *redis.Client // nil without REDIS_URL
}

// openBackend opens the configured index. create is only set by ingest.
func (a *app) openBackend(ctx context.Context, create bool) (*backend, error) {
	cfg := a.cfg
	b := &backend{}

	switch cfg.IndexBackend {
	case config.BackendPostgres:
		log.Println("Connecting to PostgreSQL...")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		a.closers = append(a.closers, db)
		if err := db.InitSchema(ctx); err != nil {
			return nil, err
		}
		log.Println("PostgreSQL connected and schema initialized")
		b.db = db
		b.index = postgres.NewIndex(db, a.logger)
		b.indexName = "postgres"
	default:
		idx, err := sqlite.Open(ctx, cfg.IndexPath, sqlite.Options{Create: create, Logger: a.logger})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, idx)
		b.index = idx
		b.indexName = filepath.Base(filepath.Clean(cfg.IndexPath))
	}

	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		log.Println("Redis connected")
		b.redis = client
	}
	return b, nil
}

// lock prefers Redis and falls back to a Postgres advisory lock.
// The sqlite backend without Redis runs unlocked.
func (b *backend) lock() driven.DistributedLock {
	switch {
	case b.redis != nil:
		log.Println("Using Redis distributed lock")
		return redisadapter.NewLock(b.redis, "")
	case b.db != nil:
		log.Println("Using PostgreSQL advisory lock")
		return postgres.NewAdvisoryLock(b.db)
	default:
		return nil
	}
}

// newEmbedding builds the configured embedder with its decorators.
// The rate limit applies to ingestion; the query cache needs Redis.
func (a *app) newEmbedding(b *backend, forIngest bool) (driven.EmbeddingService, error) {
	factory := ai.NewFactory(nil)
	svc, err := factory.CreateEmbeddingService(a.cfg.EmbeddingSettings())
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrNotConfigured, a.cfg.Embedding.Provider)
	}
	if forIngest && a.cfg.Embedding.RateLimit > 0 {
		svc = ai.NewRateLimitedEmbedding(svc, a.cfg.Embedding.RateLimit)
	}
	if !forIngest && b.redis != nil && a.cfg.Embedding.CacheTTL > 0 {
		cache := redisadapter.NewEmbeddingCache(b.redis, "")
		svc = ai.NewCachedEmbedding(svc, cache, a.cfg.Embedding.CacheTTL, a.logger)
	}
	a.closers = append(a.closers, svc)
	return svc, nil
}

// retrieval wires the search and answer services for query-time commands
type retrieval struct {
	backend  *backend
	services *runtime.Services
	search   driving.SearchService
	answer   driving.AnswerService
}

func (a *app) newRetrieval(ctx context.Context, withAnswers bool) (*retrieval, error) {
	if withAnswers {
		if err := a.cfg.RequireLLM(); err != nil {
			return nil, err
		}
	}

	b, err := a.openBackend(ctx, false)
	if err != nil {
		return nil, err
	}
	embedding, err := a.newEmbedding(b, false)
	if err != nil {
		return nil, err
	}
	rt := runtime.NewServices(embedding)

	if withAnswers {
		gen, err := ai.NewFactory(nil).CreateAnswerGenerator(a.cfg.LLMSettings())
		if err != nil {
			return nil, err
		}
		rt.SetAnswerGenerator(gen)
		a.closers = append(a.closers, gen)
	}

	log.Printf("Runtime config: backend=%s, embedding=%s, llm=%t",
		a.cfg.IndexBackend, embedding.Model(), withAnswers)

	search := services.NewSearchService(services.SearchServiceConfig{
		Index:    b.index,
		Services: rt,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
	r := &retrieval{backend: b, services: rt, search: search}
	if withAnswers {
		r.answer = services.NewAnswerService(services.AnswerServiceConfig{
			Search:   search,
			Services: rt,
			Options:  a.cfg.SearchOptions(),
			Metrics:  a.metrics,
			Logger:   a.logger,
		})
	}
	return r, nil
}
