package cmd

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"typeahead/internal/config"
	"typeahead/internal/memo"
	"typeahead/internal/search"
	"typeahead/internal/selection"
	"typeahead/internal/session"
)

// app holds the long-lived pieces shared by the TUI and headless commands
type app struct {
	backend *search.Cached
	cache   *memo.Cache[[]string]
	store   *session.Namespaced
	sink    *selection.URLSink
	closer  io.Closer
}

func newApp(cfg *config.Config, log logr.Logger) (*app, error) {
	backend, err := search.Open(cfg.BackendOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open backend: %w", err)
	}

	storage, err := memo.NewStorage[[]string](cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	cache := memo.New(memo.Options[[]string]{Storage: storage, Log: log})

	store, closer, err := session.Open(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	log.V(1).Info("session store opened", "kind", cfg.Store.Kind, "path", cfg.Store.Path)

	return &app{
		backend: search.NewCached(cfg.Backend.Kind, backend, cache),
		cache:   cache,
		store:   session.NewNamespaced(store, cfg.Namespace),
		sink:    selection.NewURLSink(cfg.RedirectURL, nil),
		closer:  closer,
	}, nil
}

func (a *app) Close() error {
	a.cache.Close()
	if err := a.closer.Close(); err != nil {
		return fmt.Errorf("failed to close session store: %w", err)
	}
	return nil
}
