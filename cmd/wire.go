package cmd

import (
	"context"
	"errors"
	"fmt"

	"omnibot/config"
	"omnibot/dispatch"
	"omnibot/gateway"
	"omnibot/model"
	"omnibot/prefs"
	"omnibot/task"
)

type app struct {
	cfg        config.Config
	registry   *model.Registry
	prefs      *prefs.Manager
	tasks      *task.Catalog
	ready      *gateway.Readiness
	dispatcher *dispatch.Dispatcher
	closers    []func() error
}

type wireFunc func(cfg config.Config) (*app, error)

func wireApp(cfg config.Config) (*app, error) {
	client := gateway.New(gateway.Config{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: cfg.Gateway.Timeout,
	})
	registry, err := model.FromCatalog(model.DefaultCatalog, client, cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("wire model registry: %w", err)
	}

	var probe func(ctx context.Context) error
	if cfg.Gateway.Probe {
		probe = client.Ping
	}
	return assemble(cfg, registry, gateway.NewReadiness(probe))
}

// assemble wires everything that does not depend on how models are reached.
func assemble(cfg config.Config, registry *model.Registry, ready *gateway.Readiness) (*app, error) {
	tasks, err := task.Load(cfg.TasksFile)
	if err != nil {
		return nil, fmt.Errorf("wire task presets: %w", err)
	}

	a := &app{
		cfg:        cfg,
		registry:   registry,
		tasks:      tasks,
		ready:      ready,
		dispatcher: dispatch.New(registry, ready),
	}

	var load prefs.LoadFunc
	var save prefs.SaveFunc
	switch cfg.Prefs.Backend {
	case config.BackendSQLite:
		store, err := prefs.NewSQLiteStore(cfg.Prefs.Path)
		if err != nil {
			return nil, fmt.Errorf("wire preferences: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		load, save = store.Load, store.Save
	default:
		store := prefs.NewFileStore(cfg.Prefs.Path)
		load, save = store.Load, store.Save
	}

	a.prefs, err = prefs.NewManager(load, save)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("wire preferences: %w", err)
	}
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
