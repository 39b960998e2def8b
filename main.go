package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/config"
	"github.com/rileylov/chaser/internal/logging"
	"github.com/rileylov/chaser/internal/ui"
)

var (
	// Global flags
	configPath  string
	chainFile   string
	dbPath      string
	debug       bool
	watch       bool
	reservedTop float64
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "chaser",
	Short: "Track visits to every location of a chain from a terminal bottom sheet",
	Long: `chaser shows a chain's locations in a bottom sheet you can drag between
full, half and collapsed with the mouse, or move with tab and 1/2/3.

Visits are stored in a local SQLite database. Pass --watch to reload the
chain file whenever it changes on disk.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runSheet,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists at %s", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cfg.Write(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&chainFile, "chain", "", "Chain YAML file (default: built-in sample)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Visit database (or set CHASER_DB env)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Debug logging and status line")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Float64Var(&reservedTop, "reserved-top", 0, "Pixels above the sheet it never covers")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the chain file when it changes")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(snapCmd)
	rootCmd.AddCommand(visitsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("chain") {
		cfg.Data.Chain = chainFile
	}
	if flags.Changed("db") {
		cfg.Data.Database = dbPath
	}
	if flags.Changed("watch") {
		cfg.Data.Watch = watch
	}
	if flags.Changed("reserved-top") {
		cfg.Sheet.ReservedTop = reservedTop
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadChain(path string) (*chains.Chain, error) {
	if path == "" {
		return chains.Sample(), nil
	}
	return chains.LoadFile(path)
}

func runSheet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.SheetOptions()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.File, cfg.Logging.Level, debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	chain, err := loadChain(cfg.Data.Chain)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := chains.OpenVisitStore(ctx, cfg.Data.Database, logger.Named("visits"))
	if err != nil {
		return err
	}
	defer store.Close()

	visited, err := store.Visited(ctx, chain.Slug)
	if err != nil {
		return err
	}

	zone.NewGlobal()
	defer zone.Close()

	app, err := ui.New(chain, visited, ui.Options{
		Sheet:      opts,
		CellHeight: cfg.Sheet.CellHeight,
		Store:      store,
		Home:       cfg.Data.Home,
		Debug:      debug,
		Log:        logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if cfg.Data.Watch && cfg.Data.Chain != "" {
		w, err := chains.NewWatcher(cfg.Data.Chain, logger.Named("watch"), func(c *chains.Chain, err error) {
			p.Send(reloaded(ctx, store, c, err))
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	logger.Info("starting",
		zap.String("chain", chain.Slug),
		zap.Int("locations", len(chain.Locations)),
		zap.String("db", store.Path()))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// reloaded turns a watcher result into the message the app applies, reading
// the new chain's visits so progress stays correct if its slug changed.
func reloaded(ctx context.Context, store *chains.VisitStore, c *chains.Chain, err error) ui.ChainLoadedMsg {
	if err != nil {
		return ui.ChainLoadedMsg{Err: err}
	}
	visited, err := store.Visited(ctx, c.Slug)
	if err != nil {
		return ui.ChainLoadedMsg{Err: err}
	}
	return ui.ChainLoadedMsg{Chain: c, Visited: visited}
}
