// Package config provides configuration management for envpkgsearch.
// It handles loading, validating and saving the YAML settings file and
// resolves the per-source locations (pyenv root, pipx home, conda) from
// settings, environment variables and the user's home directory.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
)

// Environment variables consulted during resolution.
const (
	EnvConfigPath = "ENVPKGSEARCH_CONFIG"
	EnvPyenvRoot  = "PYENV_ROOT"
	EnvPipxHome   = "PIPX_HOME"
	EnvCondaExe   = "CONDA_EXE"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	LogFormat    string `yaml:"log_format"`    // text, json
	NoColor      bool   `yaml:"no_color"`

	// Cache settings
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Discovery settings
	ToolTimeout  time.Duration `yaml:"tool_timeout"`
	Encoding     string        `yaml:"encoding,omitempty"`
	Sources      []string      `yaml:"sources,omitempty"`
	ScanPackages bool          `yaml:"scan_packages"`

	// Source locations. Empty values fall back to environment variables and
	// the conventional locations under the home directory.
	PyenvRoot    string   `yaml:"pyenv_root,omitempty"`
	PipxHome     string   `yaml:"pipx_home,omitempty"`
	CondaCommand string   `yaml:"conda_command,omitempty"`
	CondaRoots   []string `yaml:"conda_roots,omitempty"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default configuration values.
const (
	// DefaultToolTimeout bounds each pyenv or conda invocation.
	DefaultToolTimeout = discovery.DefaultToolTimeout

	// DefaultOutputFormat is the default output format.
	DefaultOutputFormat = OutputText

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default encoding of log lines.
	DefaultLogFormat = OutputText

	// LogLevelDebug is the level the --verbose flag selects.
	LogLevelDebug = "debug"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// defaultCondaDirs are the installation directories conda installers use
// under the home directory.
var defaultCondaDirs = []string{"miniconda3", "anaconda3", "miniforge3", "mambaforge"}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			OutputFormat: DefaultOutputFormat,
			LogLevel:     DefaultLogLevel,
			LogFormat:    DefaultLogFormat,
			ToolTimeout:  DefaultToolTimeout,
			ScanPackages: true,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config file not found, using defaults", logger.Fields{"path": absPath})
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	// Settings absent from the file keep their default values.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	validFormats := map[string]bool{OutputText: true, OutputJSON: true}
	if !validFormats[s.OutputFormat] {
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%q (valid: text, json)", s.OutputFormat)
	}
	if !validFormats[s.LogFormat] {
		return errors.Wrapf(errors.ErrInvalidLogFormat, "%q (valid: text, json)", s.LogFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.Wrapf(errors.ErrInvalidLogLevel, "%q (valid: debug, info, warn, error)", s.LogLevel)
	}
	if s.ToolTimeout < 0 {
		return errors.ErrToolTimeoutNegative
	}
	for _, name := range s.Sources {
		if !slices.Contains(discovery.AllSources(), name) {
			return errors.Wrapf(errors.ErrUnknownSource, "%q (valid: %v)", name, discovery.AllSources())
		}
	}
	return nil
}

// GetDefaultConfigPath returns the configuration file path: $ENVPKGSEARCH_CONFIG
// when set, else config.yaml in the user config directory.
func GetDefaultConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// GetCacheDir returns the cache directory from settings, falling back to the
// platform cache directory.
func (c *Config) GetCacheDir() string {
	if c.Settings.CacheDir != "" {
		return expandHome(c.Settings.CacheDir, fsutil.HomeDir())
	}
	dir, err := fsutil.GetCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fsutil.AppName)
	}
	return dir
}

// GetCachePath returns the path of the environment cache file.
func (c *Config) GetCachePath() string {
	return filepath.Join(c.GetCacheDir(), fsutil.EnvironmentCacheFile)
}

// EnabledSources returns the discovery sources to run in run order.
func (c *Config) EnabledSources() []string {
	if len(c.Settings.Sources) == 0 {
		return discovery.AllSources()
	}
	var enabled []string
	for _, name := range discovery.AllSources() {
		if slices.Contains(c.Settings.Sources, name) {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// ResolvePyenvRoot returns the pyenv root: the configured value, else
// $PYENV_ROOT, else ~/.pyenv. It is "" when nothing applies.
func (c *Config) ResolvePyenvRoot(getenv func(string) string, home string) string {
	if c.Settings.PyenvRoot != "" {
		return expandHome(c.Settings.PyenvRoot, home)
	}
	if root := getenv(EnvPyenvRoot); root != "" {
		return root
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".pyenv")
}

// ResolvePipxVenvs returns the pipx virtualenv directory: <pipx home>/venvs,
// where the pipx home is the configured value, else $PIPX_HOME, else
// ~/.local/pipx.
func (c *Config) ResolvePipxVenvs(getenv func(string) string, home string) string {
	pipxHome := expandHome(c.Settings.PipxHome, home)
	if pipxHome == "" {
		pipxHome = getenv(EnvPipxHome)
	}
	if pipxHome == "" {
		if home == "" {
			return ""
		}
		pipxHome = filepath.Join(home, ".local", "pipx")
	}
	return filepath.Join(pipxHome, "venvs")
}

// ResolveCondaCommand returns the conda executable: the configured value,
// else $CONDA_EXE, else "conda" looked up on the search path.
func (c *Config) ResolveCondaCommand(getenv func(string) string) string {
	if c.Settings.CondaCommand != "" {
		return c.Settings.CondaCommand
	}
	if exe := getenv(EnvCondaExe); exe != "" {
		return exe
	}
	return discovery.DefaultCondaCommand
}

// ResolveCondaRoots returns the conda installations scanned when the conda
// tool cannot be run: the configured roots, else the installation owning
// $CONDA_EXE followed by the installer defaults under the home directory.
func (c *Config) ResolveCondaRoots(getenv func(string) string, home string) []string {
	if len(c.Settings.CondaRoots) > 0 {
		roots := make([]string, 0, len(c.Settings.CondaRoots))
		for _, root := range c.Settings.CondaRoots {
			roots = append(roots, expandHome(root, home))
		}
		return roots
	}

	var roots []string
	if exe := getenv(EnvCondaExe); exe != "" && filepath.IsAbs(exe) {
		// $CONDA_EXE is <root>/bin/conda or <root>/condabin/conda.
		roots = append(roots, filepath.Dir(filepath.Dir(exe)))
	}
	if home != "" {
		for _, dir := range defaultCondaDirs {
			roots = append(roots, filepath.Join(home, dir))
		}
	}
	return roots
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	if c.Settings.ToolTimeout == 0 {
		c.Settings.ToolTimeout = defaults.Settings.ToolTimeout
	}
}

// expandHome replaces a leading "~" with home.
func expandHome(path, home string) string {
	if home == "" || path == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}
