package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/matching"
	"github.com/oggyb/muzz-matching/internal/notify"
	"github.com/oggyb/muzz-matching/internal/ratelimit"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// AppContext holds shared dependencies (DB, Redis, Logger, engine, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Dispatcher *notify.Dispatcher
	Engine     *matching.Engine
}

// New wires the matching engine from the shared dependencies.
// natsConn may be nil, in which case notifications only land in the inbox
// table.
func New(cfg *config.Config, database *gorm.DB, rdb *cache.RedisCache, natsConn *nats.Conn, logger *slog.Logger) *AppContext {
	decisions := repository.NewDecisionRepository(database)

	var notifier notify.Fanout
	notifier = append(notifier, repository.NewNotificationRepository(database))
	if natsConn != nil {
		notifier = append(notifier, notify.NewPublisher(natsConn))
	}

	rule := ratelimit.Rule{
		Key:    ratelimit.RuleDecision.Key,
		Limit:  cfg.Matching.RateLimit.Limit,
		Window: cfg.Matching.RateLimit.Window,
	}
	var limiter ratelimit.Limiter
	switch cfg.Matching.RateLimit.Backend {
	case "ledger":
		limiter = ratelimit.NewLedgerLimiter(decisions, rule)
	default:
		limiter = ratelimit.NewRedisLimiter(rdb.Client, rule, logger)
	}

	dispatcher := notify.NewDispatcher(logger, cfg.Matching.DispatchTimeout)

	engine := matching.NewEngine(matching.Deps{
		Decisions:   decisions,
		Users:       repository.NewCandidateRepository(database),
		Preferences: repository.NewPreferenceRepository(database),
		Matches:     repository.NewMatchRepository(database),
		Messages:    repository.NewMessageRepository(database),
		Notifier:    notifier,
		Limiter:     limiter,
		Counts:      rdb,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Config:      cfg.Matching,
	})

	return &AppContext{
		Config:     cfg,
		DB:         database,
		RedisCache: rdb,
		Logger:     logger,
		Dispatcher: dispatcher,
		Engine:     engine,
	}
}
