package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const (
	// DefaultRepoOwner is the GitHub account publishing the modpack.
	DefaultRepoOwner = "PlepperGuy"
	// DefaultRepoName is the repository whose releases carry the modpack archive.
	DefaultRepoName = "pleppervr-client-production"
	// DefaultInstanceName is the Prism Launcher instance kept up to date.
	DefaultInstanceName = "PlepperVR_Test"
	// DefaultArchiveExtension identifies the modpack asset in a release.
	DefaultArchiveExtension = ".mrpack"
	// DefaultLogLevel is used when LogLevel is empty or unknown.
	DefaultLogLevel = "info"

	prismExecutableName = "prismlauncher"
	prismDataDirName    = "PrismLauncher"
)

// DefaultBackupItems lists the paths inside the game directory preserved across an update.
func DefaultBackupItems() []string {
	return []string{
		"options.txt",
		"config",
		"saves",
		"resourcepacks",
		"shaderpacks",
		"screenshots",
		"instance.cfg",
	}
}

// Default returns the built-in settings for the current platform.
func Default() *Config {
	launcherPath, dataDir := defaultPrismPaths()

	return &Config{
		RepoOwner:           DefaultRepoOwner,
		RepoName:            DefaultRepoName,
		InstanceName:        DefaultInstanceName,
		PrismLauncherPath:   launcherPath,
		PrismDataDir:        dataDir,
		EnableBackup:        true,
		LaunchAfterUpdate:   true,
		SkipUpdateIfCurrent: false,
		BackupItems:         DefaultBackupItems(),
		ArchiveExtension:    DefaultArchiveExtension,
		LogLevel:            DefaultLogLevel,
	}
}

// defaultPrismPaths returns the usual Prism Launcher executable and data directory.
func defaultPrismPaths() (string, string) {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		roaming, err := os.UserConfigDir()
		if err != nil {
			roaming = filepath.Join(home, "AppData", "Roaming")
		}

		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}

		return filepath.Join(local, "Programs", "PrismLauncher", prismExecutableName+".exe"),
			filepath.Join(roaming, prismDataDirName)
	case "darwin":
		return filepath.Join("/Applications", "Prism Launcher.app", "Contents", "MacOS", prismExecutableName),
			filepath.Join(home, "Library", "Application Support", prismDataDirName)
	default:
		launcherPath := filepath.Join("/usr", "bin", prismExecutableName)
		if found, err := exec.LookPath(prismExecutableName); err == nil {
			launcherPath = found
		}

		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}

		return launcherPath, filepath.Join(dataHome, prismDataDirName)
	}
}
