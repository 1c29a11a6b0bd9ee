package cli

import (
	"fmt"
	"os"

	"github.com/cperrin88/envpkgsearch/pkg/cache"
	"github.com/cperrin88/envpkgsearch/pkg/config"
	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration, applies the global flag overrides and
// initializes logging. Every command goes through it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if NoColor != nil && *NoColor {
		cfg.Settings.NoColor = true
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = config.LogLevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.LogFormat), cfg.Settings.NoColor)
	return cfg, nil
}

// getConfigPath returns the --config flag value or the default config path.
func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig fail with a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// discoveryOptions resolves the process-wide discovery settings from cfg and
// the process environment.
func discoveryOptions(cfg *config.Config) discovery.Options {
	home := fsutil.HomeDir()
	return discovery.Options{
		Host:         discovery.DefaultHost(),
		PathList:     os.Getenv("PATH"),
		PyenvRoot:    cfg.ResolvePyenvRoot(os.Getenv, home),
		PipxVenvsDir: cfg.ResolvePipxVenvs(os.Getenv, home),
		CondaCommand: cfg.ResolveCondaCommand(os.Getenv),
		CondaRoots:   cfg.ResolveCondaRoots(os.Getenv, home),
		Runner:       process.NewExecRunner(),
		Tool: discovery.ToolOptions{
			Timeout:  cfg.Settings.ToolTimeout,
			Encoding: cfg.Settings.Encoding,
		},
		Sources: cfg.EnabledSources(),
	}
}

// newCacheManager returns the cache manager for the configured directory,
// or for the platform cache directory when none is configured.
func newCacheManager(cfg *config.Config) (*cache.DefaultManager, error) {
	if cfg.Settings.CacheDir != "" {
		return cache.NewManager(cfg.GetCacheDir()), nil
	}

	manager, err := cache.NewDefaultManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create cache manager: %w", err)
	}
	return manager, nil
}

// loadStore reads the environment cache. A missing cache yields an empty store.
func loadStore(cfg *config.Config) (*cache.Store, error) {
	store := cache.NewStore()
	if err := store.Load(cfg.GetCachePath()); err != nil {
		return nil, err
	}
	return store, nil
}

func jsonOutput(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == config.OutputJSON
}
