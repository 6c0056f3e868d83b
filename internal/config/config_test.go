package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoadMissingFileUsesDefaults checks that an absent settings file is silently ignored.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestLoadMalformedFileKeepsDefaults ensures invalid JSON is reported but never fatal.
func TestLoadMalformedFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{"RepoOwner": "someone",`), 0o600))

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedSettings)
	require.NotNil(t, cfg)
	require.Equal(t, "PlepperGuy", cfg.RepoOwner)
	require.Equal(t, DefaultRepoName, cfg.RepoName)
	require.True(t, cfg.EnableBackup)
}

// TestLoadPartialOverride ensures omitted keys keep their defaults.
func TestLoadPartialOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := `{
  "InstanceName": "PlepperVR",
  "EnableBackup": false,
  "BackupItems": ["saves", " ", "options.txt"]
}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "PlepperVR", cfg.InstanceName)
	require.False(t, cfg.EnableBackup)
	require.True(t, cfg.LaunchAfterUpdate)
	require.Equal(t, []string{"saves", "options.txt"}, cfg.BackupItems)
	require.Equal(t, DefaultRepoOwner, cfg.RepoOwner)
	require.Equal(t, DefaultArchiveExtension, cfg.ArchiveExtension)
}

// TestLoadWrongTypeKeepsDefaults ensures a value of the wrong type falls back to defaults.
func TestLoadWrongTypeKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{"EnableBackup": "sometimes"}`), 0o600))

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedSettings)
	require.True(t, cfg.EnableBackup)
}

// TestLoadYAML reads a YAML settings file.
func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "updater_config.yaml")
	contents := "RepoName: pleppervr-beta\nArchiveExtension: zip\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pleppervr-beta", cfg.RepoName)
	require.Equal(t, ".zip", cfg.ArchiveExtension)
}

// TestValidate checks normalization of empty and partial settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := &Config{ArchiveExtension: "mrpack", BackupItems: []string{"", "saves"}}
	require.NoError(t, Validate(cfg))
	require.Equal(t, ".mrpack", cfg.ArchiveExtension)
	require.Equal(t, DefaultRepoOwner, cfg.RepoOwner)
	require.Equal(t, DefaultInstanceName, cfg.InstanceName)
	require.NotEmpty(t, cfg.PrismLauncherPath)
	require.Equal(t, []string{"saves"}, cfg.BackupItems)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly in both formats.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"settings.json", "settings.yaml"} {
		path := filepath.Join(t.TempDir(), name)

		settings := Default()
		settings.InstanceName = "PlepperVR_Main"
		settings.LaunchAfterUpdate = false
		settings.BackupItems = []string{"saves", "screenshots"}

		require.NoError(t, Save(path, settings))

		loaded, err := Load(path)
		require.NoError(t, err, name)
		require.Equal(t, settings, loaded, name)
	}
}

// TestDefaultPath ensures the settings file is looked up beside the executable.
func TestDefaultPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultConfigFilename, filepath.Base(DefaultPath()))
}
