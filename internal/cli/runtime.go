package cli

import (
	"log"

	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/pysugar/codex-accounts/internal/config"
	"github.com/pysugar/codex-accounts/internal/metrics"
	"github.com/pysugar/codex-accounts/internal/store"
)

// env is what every command runs against.
type env struct {
	cfg     *config.Config
	svc     *app.Service
	metrics *metrics.Metrics
}

func loadConfig(flags *GlobalFlags) (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.LoadFrom(flags.Config, flags.DataDir)
	if err != nil {
		return nil, err
	}
	if flags.Verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func openPersister(cfg *config.Config) (store.Persister, error) {
	if cfg.Storage == config.StorageSQLite {
		return store.OpenSQLite(cfg.StatePath(), cfg.Verbose)
	}
	return store.NewJSONFile(cfg.StatePath()), nil
}

// openEnv loads configuration and builds the service.
func openEnv(flags *GlobalFlags) (*env, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	p, err := openPersister(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("📁 [Store] Using %s", p.Location())
	}

	m := metrics.NewMetrics("codex_accounts")
	svc := app.New(app.Options{
		Store:    store.Open(p),
		Metrics:  m,
		AuthFile: cfg.AuthFile,
	})
	return &env{cfg: cfg, svc: svc, metrics: m}, nil
}
