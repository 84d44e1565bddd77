package main

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/tagcloud/cache"
	"github.com/IvanBrykalov/tagcloud/config"
	"github.com/IvanBrykalov/tagcloud/metrics/prom"
	"github.com/IvanBrykalov/tagcloud/service"
	"github.com/IvanBrykalov/tagcloud/source"
)

// stack is the SQLite source, the memory cache and the service over both.
type stack struct {
	db  *source.SQLite
	mem *cache.Memory
	svc *service.Service
}

// openStack wires the components described by cfg. met may be nil.
func openStack(cfg config.Config, met *prom.Adapter) (*stack, error) {
	db, err := source.OpenSQLite(source.SQLiteOptions{Path: cfg.DB.Path, Limit: cfg.DB.Limit})
	if err != nil {
		return nil, err
	}

	var cm cache.Metrics
	var sm service.Metrics
	if met != nil {
		cm, sm = met, met
	}
	copt, err := cfg.CacheOptions(cm)
	if err != nil {
		db.Close()
		return nil, err
	}
	mem, err := cache.New(copt)
	if err != nil {
		db.Close()
		return nil, errors.WithMessage(err, "creating cache")
	}

	cloudOpt, err := cfg.CloudOptions()
	if err != nil {
		mem.Close()
		db.Close()
		return nil, err
	}
	svc, err := service.New(service.Options{
		Store:           mem,
		Source:          db,
		Cloud:           cloudOpt,
		WarmConcurrency: cfg.WarmConcurrency,
		Metrics:         sm,
		Logger:          slog.Default(),
	})
	if err != nil {
		mem.Close()
		db.Close()
		return nil, err
	}
	slog.Debug("stack ready",
		"db", cfg.DB.Path, "policy", copt.Policy.Name(), "shards", mem.Shards(), "capacity", cfg.Cache.Capacity)
	return &stack{db: db, mem: mem, svc: svc}, nil
}

func (s *stack) Close() error {
	s.mem.Close()
	return s.db.Close()
}
