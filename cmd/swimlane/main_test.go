package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/swimlane/internal/app"
	"github.com/hylla/swimlane/internal/config"
	"github.com/hylla/swimlane/internal/domain"
	"github.com/hylla/swimlane/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("SWIMLANE_DEV_MODE", "false")
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram drives the model passed to programFactory inside run() tests.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

// isolateDirs points XDG lookups and the working directory at a temp tree.
func isolateDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("SWIMLANE_CONFIG", "")
	t.Setenv("SWIMLANE_SEED", "")
	t.Setenv("SWIMLANE_APP_NAME", "")
	t.Chdir(tmp)
	return tmp
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// writeSeed writes a three-task board snapshot and returns its path.
func writeSeed(t *testing.T, dir string) string {
	t.Helper()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	board, err := app.EmptyBoard(app.DefaultColumns())
	if err != nil {
		t.Fatalf("EmptyBoard() error = %v", err)
	}
	past := now.Add(-72 * time.Hour)
	inputs := []domain.TaskInput{
		{Title: "Fix login bug", Status: domain.StatusTodo, Priority: domain.PriorityUrgent, DueAt: &past},
		{Title: "Write docs", Status: domain.StatusTodo, Priority: domain.PriorityLow},
		{Title: "Ship release", Status: domain.StatusInProgress, Priority: domain.PriorityHigh},
	}
	for idx, in := range inputs {
		next, _, err := board.AddTask("seed-"+string(rune('a'+idx)), in, now)
		if err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
		board = next
	}
	path := filepath.Join(dir, "board.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := app.ExportSnapshot(board, now).Encode(f); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "swimlane") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRunStartsProgram(t *testing.T) {
	isolateDirs(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	if err := run(context.Background(), nil, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunPropagatesProgramError(t *testing.T) {
	isolateDirs(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	boom := errors.New("terminal gone")
	programFactory = func(_ tea.Model) program { return fakeProgram{runErr: boom} }

	err := run(context.Background(), nil, io.Discard, io.Discard)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped program error, got %v", err)
	}
}

func TestRunHandsBoardModelToProgram(t *testing.T) {
	tmp := isolateDirs(t)
	seed := writeSeed(t, tmp)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	var quit bool
	programFactory = func(m tea.Model) program {
		return scriptedProgram{model: m, runFn: func(model tea.Model) (tea.Model, error) {
			if _, ok := model.(tui.Model); !ok {
				t.Fatalf("expected tui.Model, got %T", model)
			}
			model, _ = model.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
			model, cmd := model.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
			quit = cmd != nil
			return model, nil
		}}
	}

	if err := run(context.Background(), []string{"--seed", seed}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !quit {
		t.Fatal("expected q to return a quit command")
	}
}

func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunPathsCommand(t *testing.T) {
	tmp := isolateDirs(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--app", "lanes", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"app: lanes",
		"dev_mode: false",
		"config: " + filepath.Join(tmp, "config", "lanes", "config.toml"),
		"seed: " + filepath.Join(tmp, "data", "lanes", "board.json"),
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in paths output, got %q", want, got)
		}
	}
}

func TestRunExportCommandWritesSnapshot(t *testing.T) {
	tmp := isolateDirs(t)
	cfgPath := filepath.Join(tmp, "missing.toml")
	outPath := filepath.Join(tmp, "out", "snapshot.json")
	if err := run(context.Background(), []string{"--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion {
		t.Fatalf("unexpected snapshot version %q", snap.Version)
	}
	if len(snap.Columns) != 4 || len(snap.Tasks) == 0 {
		t.Fatalf("expected sample board export, got %d columns / %d tasks", len(snap.Columns), len(snap.Tasks))
	}
}

func TestRunExportToStdoutFromSeed(t *testing.T) {
	tmp := isolateDirs(t)
	seed := writeSeed(t, tmp)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--seed", seed, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	snap, err := app.DecodeSnapshot(&out)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if len(snap.Tasks) != 3 {
		t.Fatalf("expected 3 seeded tasks, got %d", len(snap.Tasks))
	}
}

func TestRunEmptyBoardWhenSamplesDisabled(t *testing.T) {
	tmp := isolateDirs(t)
	cfgPath := filepath.Join(tmp, "config.toml")
	writeConfig(t, cfgPath, `
[board]
sample_tasks = false

[[board.columns]]
id = "backlog"
title = "Backlog"
status = "todo"

[[board.columns]]
id = "shipped"
title = "Shipped"
status = "done"
`)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--config", cfgPath, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	snap, err := app.DecodeSnapshot(&out)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if len(snap.Columns) != 2 || len(snap.Tasks) != 0 {
		t.Fatalf("expected empty two-column board, got %#v", snap)
	}
}

func TestRunMissingExplicitSeedFails(t *testing.T) {
	tmp := isolateDirs(t)
	missing := filepath.Join(tmp, "nope.json")
	err := run(context.Background(), []string{"--seed", missing, "export"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "open seed") {
		t.Fatalf("expected missing seed error, got %v", err)
	}
}

func TestRunSeedEnvOverride(t *testing.T) {
	tmp := isolateDirs(t)
	seed := writeSeed(t, tmp)
	t.Setenv("SWIMLANE_SEED", seed)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	if !strings.Contains(out.String(), "Ship release") {
		t.Fatalf("expected env seed to be used, got %q", out.String())
	}
}

func TestRunSummaryCommand(t *testing.T) {
	tmp := isolateDirs(t)
	seed := writeSeed(t, tmp)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--seed", seed, "summary"}, &out, io.Discard); err != nil {
		t.Fatalf("run(summary) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"Column", "To Do", "In Progress", "2/10", "1/5", "3 tasks shown, 3 on board, filter: none"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in summary, got %q", want, got)
		}
	}
}

func TestRunSummaryAppliesFilters(t *testing.T) {
	tmp := isolateDirs(t)
	seed := writeSeed(t, tmp)
	var out bytes.Buffer
	args := []string{"--seed", seed, "summary", "--priority", "urgent"}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(summary) error = %v", err)
	}
	if !strings.Contains(out.String(), "1 tasks shown, 3 on board") {
		t.Fatalf("expected filtered totals, got %q", out.String())
	}

	err := run(context.Background(), []string{"--seed", seed, "summary", "--priority", "asap"}, io.Discard, io.Discard)
	if !errors.Is(err, app.ErrInvalidPriorityFilter) {
		t.Fatalf("expected ErrInvalidPriorityFilter, got %v", err)
	}
}

func TestRunConfigEnvOverride(t *testing.T) {
	tmp := isolateDirs(t)
	cfgPath := filepath.Join(tmp, "env.toml")
	writeConfig(t, cfgPath, "[logging]\nlevel = \"loud\"\n")
	t.Setenv("SWIMLANE_CONFIG", cfgPath)
	err := run(context.Background(), []string{"export"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected env config to be loaded and rejected, got %v", err)
	}
}

func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	workspace := isolateDirs(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev"}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".swimlane", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s, got %v", logDir, entries)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected TUI lifecycle entries in dev log, got %q", content)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("SWIMLANE_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("SWIMLANE_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected true/true, got %t/%t", v, ok)
	}
	t.Setenv("SWIMLANE_TEST_BOOL", "nah")
	if _, ok := parseBoolEnv("SWIMLANE_TEST_BOOL"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
	t.Setenv("SWIMLANE_TEST_BOOL", "")
	if _, ok := parseBoolEnv("SWIMLANE_TEST_BOOL"); ok {
		t.Fatal("expected blank value to be ignored")
	}
}

func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "swimlane")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "swimlane")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	got, err := devLogFilePath("", "swimlane", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	want := filepath.Join(root, ".swimlane", "log", "swimlane-20260222.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected log path %q, got %q", want, got)
	}
}

func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"":            "swimlane",
		" / ":         "swimlane",
		"my app":      "my-app",
		"team/lanes:": "team-lanes",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/board.json").Logging
	logger, err := newRuntimeLogger(&console, "swimlane", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include before/after, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
}

func TestRuntimeLoggerEngineSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("").Logging
	logger, err := newRuntimeLogger(&console, "swimlane", false, cfg, nil)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	logger.engineSink().Info("engine event")
	if !strings.Contains(console.String(), "engine event") {
		t.Fatalf("expected engine logs on console, got %q", console.String())
	}

	console.Reset()
	logger.SetConsoleEnabled(false)
	logger.engineSink().Info("hidden event")
	if console.Len() != 0 {
		t.Fatalf("expected muted engine sink, got %q", console.String())
	}
}

func TestNewRuntimeLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.Default("").Logging
	cfg.Level = "loud"
	if _, err := newRuntimeLogger(io.Discard, "swimlane", false, cfg, nil); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestRuntimeCloseWarnsOnConsoleWhenDevFileFails(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("").Logging
	logger, err := newRuntimeLogger(&console, "swimlane", false, cfg, nil)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	var file bytes.Buffer
	logger.fileSink = charmLog.New(&file)
	logger.sinks = append(logger.sinks, logger.fileSink)
	logger.closeFile = func() error { return errors.New("disk gone") }
	logger.devLog = "/tmp/swimlane.log"

	rt := &runtimeEnv{logger: logger}
	rt.close()

	out := console.String()
	if !strings.Contains(out, "close runtime log sink failed") || !strings.Contains(out, "disk gone") {
		t.Fatalf("expected close warning on console, got %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Fatalf("expected warn level, got %q", out)
	}
	if file.Len() != 0 {
		t.Fatalf("expected closed file sink to be detached, got %q", file.String())
	}

	console.Reset()
	rt.close()
	if console.Len() != 0 {
		t.Fatalf("expected second close to be silent, got %q", console.String())
	}
}
