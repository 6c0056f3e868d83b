package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the operating parameters of one updater run.
// Keys in the settings file match the field names exactly.
type Config struct {
	// RepoOwner is the GitHub account that publishes releases.
	RepoOwner string `json:"RepoOwner" yaml:"RepoOwner" mapstructure:"RepoOwner"`
	// RepoName is the GitHub repository holding the modpack releases.
	RepoName string `json:"RepoName" yaml:"RepoName" mapstructure:"RepoName"`
	// InstanceName is the Prism Launcher instance to update and start.
	InstanceName string `json:"InstanceName" yaml:"InstanceName" mapstructure:"InstanceName"`
	// PrismLauncherPath is the Prism Launcher executable.
	PrismLauncherPath string `json:"PrismLauncherPath" yaml:"PrismLauncherPath" mapstructure:"PrismLauncherPath"`
	// PrismDataDir is the Prism Launcher data directory passed with -d.
	PrismDataDir string `json:"PrismDataDir" yaml:"PrismDataDir" mapstructure:"PrismDataDir"`
	// EnableBackup preserves BackupItems across the import.
	EnableBackup bool `json:"EnableBackup" yaml:"EnableBackup" mapstructure:"EnableBackup"`
	// LaunchAfterUpdate starts the instance once the update finishes.
	LaunchAfterUpdate bool `json:"LaunchAfterUpdate" yaml:"LaunchAfterUpdate" mapstructure:"LaunchAfterUpdate"`
	// SkipUpdateIfCurrent is accepted for compatibility; no version check exists yet.
	SkipUpdateIfCurrent bool `json:"SkipUpdateIfCurrent" yaml:"SkipUpdateIfCurrent" mapstructure:"SkipUpdateIfCurrent"`
	// BackupItems are paths relative to the instance game directory.
	BackupItems []string `json:"BackupItems" yaml:"BackupItems" mapstructure:"BackupItems"`
	// ArchiveExtension selects the release asset to download.
	ArchiveExtension string `json:"ArchiveExtension,omitempty" yaml:"ArchiveExtension,omitempty" mapstructure:"ArchiveExtension"`
	// GitHubToken is sent as a bearer token to the release API when set.
	GitHubToken string `json:"GitHubToken,omitempty" yaml:"GitHubToken,omitempty" mapstructure:"GitHubToken"`
	// LogLevel is the console log level (debug, info, warn, error).
	LogLevel string `json:"LogLevel,omitempty" yaml:"LogLevel,omitempty" mapstructure:"LogLevel"`
}

const (
	// DefaultConfigFilename is the settings file looked up beside the executable.
	DefaultConfigFilename = "updater_config.json"

	// EnvPrefix prefixes environment variables overriding settings, e.g. PLEPPER_INSTANCENAME.
	EnvPrefix = "PLEPPER"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// ErrMalformedSettings is returned by Load when the settings file cannot be parsed.
	ErrMalformedSettings = errors.New("malformed settings file")

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// DefaultPath returns DefaultConfigFilename located in the executable's directory.
func DefaultPath() string {
	executable, err := os.Executable()
	if err != nil {
		return DefaultConfigFilename
	}

	return filepath.Join(filepath.Dir(executable), DefaultConfigFilename)
}

// Load reads settings from path on top of the built-in defaults.
//
// The returned config is always usable. A missing file is not an error.
// When the file exists but cannot be parsed, the defaults (with environment
// overrides) are returned together with an error wrapping ErrMalformedSettings.
func Load(path string) (*Config, error) {
	v := newViper()

	var loadErr error

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			v.SetConfigFile(filepath.Clean(path))
			v.SetConfigType(formatOf(path))

			if err = v.ReadInConfig(); err != nil {
				loadErr = fmt.Errorf("%w: %s: %w", ErrMalformedSettings, path, err)
				v = newViper()
			}
		case !errors.Is(err, fs.ErrNotExist):
			loadErr = fmt.Errorf("stat settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrMalformedSettings, path, err)
	}

	if err := Validate(&cfg); err != nil {
		return Default(), err
	}

	return &cfg, loadErr
}

// Save writes the settings to path as JSON, or as YAML for .yaml and .yml files.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)

	if formatOf(path) == "yaml" {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills empty fields with defaults and normalizes the rest in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	fillString(&cfg.RepoOwner, defaults.RepoOwner)
	fillString(&cfg.RepoName, defaults.RepoName)
	fillString(&cfg.InstanceName, defaults.InstanceName)
	fillString(&cfg.PrismLauncherPath, defaults.PrismLauncherPath)
	fillString(&cfg.PrismDataDir, defaults.PrismDataDir)
	fillString(&cfg.ArchiveExtension, defaults.ArchiveExtension)
	fillString(&cfg.LogLevel, defaults.LogLevel)

	if !strings.HasPrefix(cfg.ArchiveExtension, ".") {
		cfg.ArchiveExtension = "." + cfg.ArchiveExtension
	}

	items := make([]string, 0, len(cfg.BackupItems))

	for _, item := range cfg.BackupItems {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	cfg.BackupItems = items

	return nil
}

// newViper returns a viper instance with defaults and environment overrides registered.
func newViper() *viper.Viper {
	defaults := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("RepoOwner", defaults.RepoOwner)
	v.SetDefault("RepoName", defaults.RepoName)
	v.SetDefault("InstanceName", defaults.InstanceName)
	v.SetDefault("PrismLauncherPath", defaults.PrismLauncherPath)
	v.SetDefault("PrismDataDir", defaults.PrismDataDir)
	v.SetDefault("EnableBackup", defaults.EnableBackup)
	v.SetDefault("LaunchAfterUpdate", defaults.LaunchAfterUpdate)
	v.SetDefault("SkipUpdateIfCurrent", defaults.SkipUpdateIfCurrent)
	v.SetDefault("BackupItems", defaults.BackupItems)
	v.SetDefault("ArchiveExtension", defaults.ArchiveExtension)
	v.SetDefault("GitHubToken", "")
	v.SetDefault("LogLevel", defaults.LogLevel)

	return v
}

// formatOf maps a settings path to the viper config type.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func fillString(field *string, fallback string) {
	if strings.TrimSpace(*field) == "" {
		*field = fallback
	}
}
