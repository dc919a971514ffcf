package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"typeahead/internal/domain"
	"typeahead/internal/engine"
	"typeahead/internal/eventbus"
	"typeahead/internal/logger"
	"typeahead/internal/selection"
)

func newQueryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one query headlessly and print the suggestions",
		Long: `query pastes <text> into a headless engine, waits for the lookup and
prints one suggestion per line. With --select the n-th suggestion is
committed and its redirect URL printed instead. An empty <text> replays
the last stored query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pick, _ := cmd.Flags().GetInt("select")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			return c.runQuery(cmd, args[0], pick, timeout)
		},
	}
	cmd.Flags().Int("select", 0, "commit the n-th suggestion (1-based)")
	cmd.Flags().Duration("timeout", 10*time.Second, "give up after this long")
	return cmd
}

func (c *cli) runQuery(cmd *cobra.Command, text string, pick int, timeout time.Duration) error {
	if pick < 0 {
		return fmt.Errorf("--select must be positive, got %d", pick)
	}
	if text != "" && strings.TrimSpace(text) == "" {
		return errors.New("query is blank")
	}
	log := logger.FromContext(cmd.Context())

	a, err := newApp(c.cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	paste := domain.Paste(&text)
	if text == "" {
		stored, err := a.store.LoadQuery()
		if err != nil {
			return err
		}
		if stored == "" {
			return errors.New("no stored query to replay")
		}
		// a paste without payload restores the stored query
		paste = domain.Paste(nil)
	}

	r := engine.NewRunner(
		engine.Config{Debounce: c.cfg.Debounce(), WrapMode: c.cfg.Wrap()},
		engine.Deps{
			Lookup:  a.backend.Search,
			Sink:    a.sink,
			Store:   a.store,
			Refresh: a.backend.Refresh,
			Log:     log,
		},
		engine.RunnerOptions{},
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.Run(gctx)
	})

	g.Go(func() error {
		// ends the runner once the answer is printed
		defer cancel()

		if !r.Send(paste) {
			return errors.New("engine stopped before the query was sent")
		}
		snap, err := awaitTerminal(gctx, r.Snapshots())
		if err != nil {
			return err
		}
		if snap.Status.IsError() {
			return fmt.Errorf("lookup for %q failed: %w", snap.Query, snap.Status.Err)
		}

		if pick == 0 {
			if snap.NoResults {
				fmt.Fprintf(cmd.ErrOrStderr(), "no results for %q\n", snap.Query)
			}
			for _, result := range snap.Results {
				fmt.Fprintln(cmd.OutOrStdout(), result)
			}
			return nil
		}

		if pick > len(snap.Results) {
			return fmt.Errorf("--select %d is out of range: %d results for %q", pick, len(snap.Results), snap.Query)
		}
		url, err := commitNth(gctx, r, a.sink, pick)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no answer within %s", timeout)
		}
		return err
	}
	return nil
}

// awaitTerminal waits for the first resolved or failed snapshot
func awaitTerminal(ctx context.Context, snaps <-chan domain.Snapshot) (domain.Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		case snap, ok := <-snaps:
			if !ok {
				return domain.Snapshot{}, errors.New("engine stopped before the lookup finished")
			}
			if snap.Status.IsTerminal() {
				return snap, nil
			}
		}
	}
}

// commitNth walks down to the n-th suggestion and presses Enter. The
// outcome arrives on the bus.
func commitNth(ctx context.Context, r *engine.Runner, sink *selection.URLSink, n int) (string, error) {
	outcome := make(chan eventbus.DomainEvent, 1)
	report := func(e eventbus.DomainEvent) {
		select {
		case outcome <- e:
		default:
		}
	}
	defer r.Bus().Subscribe(domain.EventSelectionCommitted, report)()
	defer r.Bus().Subscribe(domain.EventError, report)()

	for i := 0; i < n; i++ {
		r.Send(domain.KeyEvent{Key: domain.KeyArrowDown})
	}
	r.Send(domain.KeyEvent{Key: domain.KeyEnter})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case ev := <-outcome:
		switch e := ev.(type) {
		case domain.SelectionCommittedEvent:
			return sink.URL(e.ID), nil
		case domain.ErrorEvent:
			return "", fmt.Errorf("%s: %w", e.Message, e.Err)
		}
		return "", fmt.Errorf("unexpected event %s", ev.Type())
	}
}
