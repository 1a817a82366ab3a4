package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hylla/swimlane/internal/app"
	"github.com/hylla/swimlane/internal/config"
	"github.com/hylla/swimlane/internal/domain"
	"github.com/hylla/swimlane/internal/platform"
	"github.com/hylla/swimlane/internal/tui"
	"github.com/spf13/cobra"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clock is swapped in tests.
var clock = time.Now

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree with args; fang styling is left to main.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	seedPath   string
	appName    string
	devMode    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: "swimlane", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("SWIMLANE_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("SWIMLANE_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:          "swimlane",
		Short:        "A keyboard-driven kanban board for the terminal",
		Long:         "swimlane shows tasks in status columns with WIP limits, search, priority filters, multi-select and drag-and-drop moves.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config TOML")
	flags.StringVar(&opts.seedPath, "seed", "", "path to a board snapshot JSON used as the initial board")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newPathsCommand(opts),
		newExportCommand(opts, stderr),
		newSummaryCommand(opts, stderr),
	)
	return root
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "seed: %s\n", paths.SeedPath)
			return nil
		},
	}
}

func newExportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the initial board as snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()
			rt.logger.Info("command flow start", "command", "export")
			if err := runExport(rt.board, outPath, cmd.OutOrStdout()); err != nil {
				rt.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "export", "tasks", rt.board.TaskCount())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	return cmd
}

func newSummaryCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		query    string
		priority string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-column counts and WIP state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()
			engine, err := newEngine(rt.board, rt.cfg, rt.logger.engineSink())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("query") {
				engine.SetSearchQuery(query)
			}
			if cmd.Flags().Changed("priority") {
				if err := engine.SetPriorityFilter(app.PriorityFilter(priority)); err != nil {
					return err
				}
			}
			rt.logger.Info("command flow start", "command", "summary")
			if err := writeSummary(cmd.OutOrStdout(), engine); err != nil {
				return fmt.Errorf("run summary command: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only count tasks matching this text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only count tasks with this priority (all, low, medium, high, urgent)")
	return cmd
}

// runtimeEnv is the resolved configuration, logger and initial board for one command.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	board      domain.Board
	source     string
}

// close releases the dev log file. A failure is reported on the sinks that
// remain usable.
func (rt *runtimeEnv) close() {
	if err := rt.logger.Close(); err != nil {
		rt.logger.Warn("close runtime log sink failed", "path", rt.logger.DevLogPath(), "err", err)
	}
}

func resolvePaths(opts *rootOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// openRuntime resolves paths and config, starts the logger and loads the
// initial board. The console sink is muted for the TUI.
func openRuntime(opts *rootOptions, stderr io.Writer, quietConsole bool) (*runtimeEnv, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("SWIMLANE_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	seedPath := strings.TrimSpace(opts.seedPath)
	seedExplicit := seedPath != ""
	if !seedExplicit {
		if envPath := strings.TrimSpace(os.Getenv("SWIMLANE_SEED")); envPath != "" {
			seedPath = envPath
			seedExplicit = true
		} else {
			seedPath = paths.SeedPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(seedPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if seedExplicit {
		cfg.Board.SeedPath = seedPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, clock)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if quietConsole {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "seed_path", cfg.Board.SeedPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	board, source, err := loadBoard(cfg, seedExplicit, clock())
	if err != nil {
		logger.Error("board load failed", "seed_path", cfg.Board.SeedPath, "err", err)
		_ = logger.Close()
		return nil, err
	}
	logger.Info("board loaded", "source", source, "columns", len(board.Columns()), "tasks", board.TaskCount())

	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		board:      board,
		source:     source,
	}, nil
}

// loadBoard builds the initial board from the seed snapshot when present,
// otherwise from the configured columns with or without the sample tasks.
// A seed given explicitly must exist.
func loadBoard(cfg config.Config, seedExplicit bool, now time.Time) (domain.Board, string, error) {
	seedPath := strings.TrimSpace(cfg.Board.SeedPath)
	if seedPath != "" {
		f, err := os.Open(seedPath)
		switch {
		case err == nil:
			defer func() { _ = f.Close() }()
			snap, err := app.DecodeSnapshot(f)
			if err != nil {
				return domain.Board{}, "", fmt.Errorf("load seed %q: %w", seedPath, err)
			}
			board, err := snap.Board(now)
			if err != nil {
				return domain.Board{}, "", fmt.Errorf("load seed %q: %w", seedPath, err)
			}
			return board, "seed", nil
		case errors.Is(err, os.ErrNotExist) && !seedExplicit:
		default:
			return domain.Board{}, "", fmt.Errorf("open seed %q: %w", seedPath, err)
		}
	}

	if cfg.Board.SampleTasks {
		board, err := app.SampleBoard(cfg.BoardColumns(), now)
		if err != nil {
			return domain.Board{}, "", fmt.Errorf("build sample board: %w", err)
		}
		return board, "sample", nil
	}
	board, err := app.EmptyBoard(cfg.BoardColumns())
	if err != nil {
		return domain.Board{}, "", fmt.Errorf("build empty board: %w", err)
	}
	return board, "empty", nil
}

// newEngine wraps board with the configured default filter.
func newEngine(board domain.Board, cfg config.Config, logger *charmLog.Logger) (*app.Engine, error) {
	priority, err := app.ParsePriorityFilter(cfg.Filter.DefaultPriority)
	if err != nil {
		return nil, fmt.Errorf("filter.default_priority: %w", err)
	}
	return app.NewEngine(board, uuid.NewString, clock,
		app.WithFilter(cfg.Filter.DefaultQuery, priority),
		app.WithLogger(logger),
	), nil
}

// tuiOptions maps config sections onto model options.
func tuiOptions(cfg config.Config) []tui.Option {
	return []tui.Option{
		tui.WithTaskFieldConfig(tui.TaskFieldConfig{
			ShowPriority:    cfg.TaskFields.ShowPriority,
			ShowDueDate:     cfg.TaskFields.ShowDueDate,
			ShowTags:        cfg.TaskFields.ShowTags,
			ShowAssignee:    cfg.TaskFields.ShowAssignee,
			ShowDescription: cfg.TaskFields.ShowDescription,
		}),
		tui.WithConfirmConfig(tui.ConfirmConfig{
			Delete:     cfg.Confirm.Delete,
			BulkDelete: cfg.Confirm.BulkDelete,
		}),
		tui.WithWIPWarnings(cfg.Board.ShowWIPWarnings),
		tui.WithKeyConfig(tui.KeyConfig{
			MultiSelect: cfg.Keys.MultiSelect,
			PickUp:      cfg.Keys.PickUp,
			Duplicate:   cfg.Keys.Duplicate,
			Yank:        cfg.Keys.Yank,
			CycleFilter: cfg.Keys.CycleFilter,
		}),
	}
}

func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
	rt, err := openRuntime(opts, stderr, true)
	if err != nil {
		return err
	}
	defer rt.close()

	engine, err := newEngine(rt.board, rt.cfg, rt.logger.engineSink())
	if err != nil {
		return err
	}
	m := tui.NewModel(engine, tuiOptions(rt.cfg)...)

	rt.logger.Info("starting tui program loop", "source", rt.source)
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "tui", "tasks", engine.Board().TaskCount())
	return nil
}

func runExport(board domain.Board, outPath string, stdout io.Writer) error {
	var buf bytes.Buffer
	if err := app.ExportSnapshot(board, clock()).Encode(&buf); err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
