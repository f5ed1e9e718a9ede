package main

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/pkg/cache"
	"github.com/akinalp/workdesk/pkg/i18n"
	"github.com/akinalp/workdesk/pkg/logger"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/ws"
)

// app is everything a command needs once configuration is loaded. serve
// uses all of it; the maintenance commands use the database and services.
type app struct {
	cfg    *config.Config
	db     *database.DB
	policy *config.Policy
	loc    *time.Location
	store  cache.Store
	reg    *metrics.Registry
	hub    *ws.Hub
	repos  *Repositories
	svcs   *Services
}

// bootstrap loads config, opens and migrates the database, and wires the
// repository and service layers. The hub is created but not started.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &app{cfg: cfg, db: db}
	if err := a.load(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) load(ctx context.Context) error {
	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("locales: %w", err)
	}
	if err := i18n.Load(locales); err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	a.policy, err = config.LoadPolicy(a.cfg.App.PolicyPath)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	a.loc, err = tz.Load(a.cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	a.store = a.openStore(ctx)
	a.reg = metrics.NewRegistry()
	a.hub = ws.NewHub()
	a.repos = initRepositories(a.db.Conn)

	a.svcs, err = initServices(a.db.Conn, a.repos, a.hub, a.store, a.reg, a.policy, a.loc, a.cfg)
	return err
}

// openStore prefers Redis when configured and falls back to process memory
// when it is unreachable.
func (a *app) openStore(ctx context.Context) cache.Store {
	if a.cfg.Redis.Addr == "" {
		return cache.NewMemoryStore(a.cfg.App.ReportCacheTTL)
	}
	store, err := cache.NewRedisStore(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password)
	if err != nil {
		log.Warn().Str("component", "main").Err(err).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemoryStore(a.cfg.App.ReportCacheTTL)
	}
	log.Info().Str("component", "main").Str("addr", a.cfg.Redis.Addr).Msg("redis cache connected")
	return store
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Str("component", "main").Err(err).Msg("close cache")
		}
	}
	if err := a.db.Close(); err != nil {
		log.Warn().Str("component", "main").Err(err).Msg("close database")
	}
}
