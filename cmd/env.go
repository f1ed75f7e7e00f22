package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/diagnose"
	"github.com/roso1102/reboard/internal/intent"
	"github.com/roso1102/reboard/internal/market"
	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/seed"
	"github.com/roso1102/reboard/internal/store"
	"github.com/roso1102/reboard/pkg/diagai"
)

// env bundles the wired subsystems a command needs.
type env struct {
	store   store.Store
	market  *market.Service
	grader  *diagnose.Grader
	adapter *diagai.Adapter
	intents *intent.Extractor
	parts   *seed.Table
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("store close", zap.Error(err))
	}
}

func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	parts, err := initParts()
	if err != nil {
		st.Close()
		return nil, err
	}

	gradeCfg := diagnose.DefaultConfig()
	if cfg.Diagnose.MaxRisks > 0 {
		gradeCfg.MaxRisks = cfg.Diagnose.MaxRisks
	}
	if err := diagnose.ValidateConfig(gradeCfg); err != nil {
		st.Close()
		return nil, err
	}

	adapter := initAdapter()

	return &env{
		store:   st,
		market:  market.NewService(st),
		grader:  diagnose.New(gradeCfg, parts),
		adapter: adapter,
		intents: intent.NewExtractor(adapter),
		parts:   parts,
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "reboard.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initParts() (*seed.Table, error) {
	if cfg.Parts.TablePath == "" {
		return seed.Default(), nil
	}
	return seed.LoadFile(cfg.Parts.TablePath)
}

// circuitFor resolves a pin-out reference, preferring the external
// service and degrading to the generic diagram.
func circuitFor(ctx context.Context, e *env, name, modelName string) model.CircuitReference {
	if e.adapter.Available() {
		if ref := e.adapter.Circuit(ctx, diagai.Meta{ComponentType: name, ModelName: modelName}); ref != nil {
			return *ref
		}
	}
	return diagnose.FallbackCircuit(name)
}

// identifyFromPhoto fills whatever component metadata the caller left
// blank from a photo, when the external service is configured.
func identifyFromPhoto(ctx context.Context, e *env, photo string, name, modelName, category *string) {
	if photo == "" || !e.adapter.Available() {
		return
	}
	if *name != "" && *modelName != "" && *category != "" {
		return
	}
	ident := e.adapter.Identify(ctx, photo)
	if ident == nil {
		return
	}
	if *name == "" {
		*name = ident.ComponentType
	}
	if *modelName == "" {
		*modelName = ident.ModelName
	}
	if *category == "" {
		*category = ident.Category
	}
}

// initAdapter returns nil when no API key is configured; callers fall
// back to the local diagnostic path.
func initAdapter() *diagai.Adapter {
	if cfg.Adapter.Key == "" {
		zap.L().Debug("external adapter not configured")
		return nil
	}
	return diagai.New(diagai.NewClient(cfg.Adapter.Key), diagai.Options{
		Model:             cfg.Adapter.Model,
		MaxTokens:         cfg.Adapter.MaxTokens,
		Timeout:           cfg.Adapter.Timeout(),
		RequestsPerSecond: cfg.Adapter.RequestsPerSecond,
	})
}
