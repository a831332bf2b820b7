package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-httpkit/internal/config"
	"github.com/samvad-hq/samvad-httpkit/internal/logger"
	"github.com/samvad-hq/samvad-httpkit/internal/plans"
	"github.com/samvad-hq/samvad-httpkit/internal/prober"
	"github.com/samvad-hq/samvad-httpkit/internal/storage"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpkit/pkg/publishers"
)

// Runner represents the httpkit runtime. It wires the HTTP client, request
// plans, the outcome journal and publishers, and runs the probe loop.
type Runner struct {
	cfg      *config.Config
	planReg  *plans.Registry
	fanout   *publishers.Fanout
	prober   *prober.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewRunner builds a runner from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	planReg, err := plans.LoadRegistry(cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests registry: %w", err)
	}
	planList := planReg.All()
	planIDs := make([]string, 0, len(planList))
	for _, p := range planList {
		planIDs = append(planIDs, p.ID)
	}
	log.InfoObj("requests registry loaded", "requests_meta", map[string]any{
		"count": len(planIDs),
		"ids":   planIDs,
	})

	hooks, err := httpclient.HooksFromNames(cfg.HTTPHooks, log)
	if err != nil {
		return nil, fmt.Errorf("build http hooks: %w", err)
	}
	client := httpclient.NewRestyClient(cfg.BaseURL,
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithHeaders(cfg.HTTPHeaders),
		httpclient.WithHooks(hooks),
		httpclient.WithLogger(log),
	)
	log.InfoObj("http client configured", "http_client", map[string]any{
		"base_url":        cfg.BaseURL,
		"timeout_seconds": int(cfg.HTTPTimeout.Seconds()),
		"hooks":           cfg.HTTPHooks,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		OutcomeTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"outcome_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Runner{
		cfg:      cfg,
		planReg:  planReg,
		fanout:   fanout,
		prober:   prober.NewService(client, fanout, store, log),
		interval: cfg.RunInterval,
		log:      log,
		store:    store,
	}, nil
}

// buildFanout loads the optional publishers file. No file means no publishers.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		log.InfoObj("no publishers file configured; outcomes stay local", "publishers_file", cfg.PublishersFile)
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.DefaultRegistry().BuildAll(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run executes the enabled plans once, or on every interval tick until the
// context is cancelled when an interval is configured.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.prober == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	enabled := r.planReg.Enabled()
	if len(enabled) == 0 {
		r.log.WarnObj("no enabled request plans; nothing to run", "requests_file", r.cfg.RequestsFile)
		return nil
	}

	if r.interval <= 0 {
		return r.runOnce(ctx, enabled)
	}

	r.log.InfoObj("probe loop starting", "runner_state", map[string]any{
		"plans_count":      len(enabled),
		"publishers_count": r.fanout.Size(),
		"interval":         r.interval.String(),
	})

	if err := r.runOnce(ctx, enabled); err != nil {
		r.log.ErrorObj("initial run failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("probe loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx, enabled); err != nil {
				r.log.ErrorObj("scheduled run failed", "error", err)
			}
		}
	}
}

// runOnce performs a single pass across all plans.
func (r *Runner) runOnce(ctx context.Context, ps []plans.Plan) error {
	start := time.Now()
	r.log.InfoObj("run started", "run_meta", map[string]any{
		"plans_count": len(ps),
		"started_at":  start.UTC(),
	})
	if err := r.prober.Run(ctx, ps); err != nil {
		return err
	}
	r.log.InfoObj("run completed", "run_meta", map[string]any{
		"plans_count": len(ps),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the storage backend and publishers, logging any errors encountered.
func (r *Runner) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
}
