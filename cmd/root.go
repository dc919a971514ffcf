// Package cmd holds the typeahead command tree
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"typeahead/internal/config"
	"typeahead/internal/domain"
	"typeahead/internal/engine"
	"typeahead/internal/eventbus"
	"typeahead/internal/logger"
	"typeahead/internal/ui"
)

// version is set at build time via ldflags.
var version = "dev"

// cli carries what PersistentPreRunE resolved to the subcommands
type cli struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logger     *logger.Logger
}

func (c *cli) log() logr.Logger {
	if c.logger == nil {
		return logr.Discard()
	}
	return c.logger.Logger
}

// flagKeys maps persistent flags onto config keys
var flagKeys = map[string]string{
	"debounce-ms":  "debounce_ms",
	"wrap-mode":    "wrap_mode",
	"namespace":    "namespace",
	"redirect-url": "redirect_url",
	"backend":      "backend.kind",
	"words":        "backend.words_file",
	"latency-ms":   "backend.latency_ms",
	"max-results":  "backend.max_results",
	"store":        "store.kind",
	"store-path":   "store.path",
	"cache-size":   "cache.size",
	"log-level":    "log.level",
	"log-file":     "log.file",
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Search as you type from the terminal",
		Long: `typeahead shows suggestions while you type. Pauses in typing send the
query to a search backend, newer queries replace older ones, and the
chosen suggestion becomes a redirect URL printed on exit.`,
		Example:       "\n  typeahead\n  typeahead --backend static\n  typeahead query cat\n  typeahead encode cat",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.logger != nil {
				c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd)
		},
	}

	d := config.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default: ./typeahead.toml or "+config.DefaultPath()+")")
	flags.Int("debounce-ms", d.DebounceMS, "quiet period before a query is sent")
	flags.String("wrap-mode", d.WrapMode, "list wrap-around: input-slot or list-only")
	flags.String("namespace", d.Namespace, "session key namespace for the last query")
	flags.String("redirect-url", d.RedirectURL, "URL prefix for committed selections")
	flags.String("backend", d.Backend.Kind, "search backend: wordlist or static")
	flags.String("words", d.Backend.WordsFile, "word list file, one entry per line")
	flags.Int("latency-ms", d.Backend.LatencyMS, "simulated backend latency")
	flags.Int("max-results", d.Backend.MaxResults, "maximum suggestions per query")
	flags.String("store", d.Store.Kind, "session store: memory, file or sqlite")
	flags.String("store-path", d.Store.Path, "session store location")
	flags.Int("cache-size", d.Cache.Size, "cached queries, 0 for unbounded")
	flags.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	flags.String("log-file", d.Log.File, "log file")

	root.AddCommand(newQueryCmd(c))
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newConfigCmd(c))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.v = config.NewViper()
	if err := bindFlags(c.v, cmd.Flags()); err != nil {
		return err
	}

	svc := config.NewConfigService(c.v)
	var err error
	if c.configFile != "" {
		c.cfg, err = svc.LoadFromPath(c.configFile)
	} else {
		c.cfg, err = svc.Load()
	}
	if err != nil {
		return err
	}

	c.logger, err = logger.New(logger.Options{Level: c.cfg.Log.Level, File: c.cfg.Log.File})
	if err != nil {
		return err
	}
	log := c.logger.WithValues(logger.ComponentKey, cmd.Name())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, log))

	log.V(1).Info("configuration loaded", "file", c.v.ConfigFileUsed())
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (c *cli) runTUI(cmd *cobra.Command) error {
	log := logger.FromContext(cmd.Context())

	a, err := newApp(c.cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	bus := eventbus.New(log)
	defer bus.Close()

	model := ui.NewModel(ui.Options{
		Config: engine.Config{Debounce: c.cfg.Debounce(), WrapMode: c.cfg.Wrap()},
		Deps: engine.Deps{
			Lookup:  a.backend.Search,
			Store:   a.store,
			Bus:     bus,
			Refresh: a.backend.Refresh,
			Log:     log,
		},
		Sink:    a.sink,
		Restore: true,
	})
	defer model.Close()
	log.Info("session started", logger.InstanceIDKey, model.InstanceID())

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Set up event forwarding to UI
	forward := func(e eventbus.DomainEvent) { p.Send(ui.EventMsg{Event: e}) }
	bus.Subscribe(domain.EventError, forward)
	bus.Subscribe(domain.EventQueryDispatched, forward)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running program: %w", err)
		}
		return nil
	})

	// Handle interrupt signals
	g.Go(func() error {
		sigCtx, stop := signal.NotifyContext(gctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()
		p.Quit()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if url, ok := model.Committed(); ok {
		log.Info("selection committed", "url", url)
		fmt.Fprintln(cmd.OutOrStdout(), url)
	}
	return nil
}
