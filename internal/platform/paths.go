package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultAppName = "swimlane"
	devSuffix      = "-dev"
	configFileName = "config.toml"
	seedFileName   = "board.json"
)

// Paths holds the resolved config file, data dir and board seed locations.
type Paths struct {
	ConfigPath string
	DataDir    string
	SeedPath   string
}

// Options selects the app directory name. DevMode keeps dev runs apart from
// the user's real board by suffixing the name.
type Options struct {
	AppName string
	DevMode bool
}

// baseOverride names the env vars that replace the config and data bases on one OS.
type baseOverride struct {
	configEnv string
	dataEnv   string
}

// macOS keeps the os.UserConfigDir defaults and has no entry.
var baseOverrides = map[string]baseOverride{
	"linux":   {configEnv: "XDG_CONFIG_HOME", dataEnv: "XDG_DATA_HOME"},
	"windows": {configEnv: "APPDATA", dataEnv: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the current OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	if opts.DevMode {
		appName += devSuffix
	}

	configDir, dataDir, err := userBaseDirs(runtime.GOOS)
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{}
	if override, ok := baseOverrides[runtime.GOOS]; ok {
		env[override.configEnv] = os.Getenv(override.configEnv)
		env[override.dataEnv] = os.Getenv(override.dataEnv)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// userBaseDirs returns the fallback config and data bases before env overrides.
func userBaseDirs(goos string) (string, string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("user config dir: %w", err)
	}
	if goos != "linux" {
		return configDir, configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("user home dir: %w", err)
	}
	return configDir, filepath.Join(home, ".local", "share"), nil
}

// PathsFor resolves paths for goos from env and the user base dirs.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if override, ok := baseOverrides[goos]; ok {
		configBase = firstNonEmpty(strings.TrimSpace(env[override.configEnv]), configBase)
		dataBase = firstNonEmpty(strings.TrimSpace(env[override.dataEnv]), dataBase)
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, configFileName),
		DataDir:    dataDir,
		SeedPath:   filepath.Join(dataDir, seedFileName),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
