package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"github.com/plepperguy/pleppervr-updater/internal/backup"
	"github.com/plepperguy/pleppervr-updater/internal/config"
	"github.com/plepperguy/pleppervr-updater/internal/download"
	"github.com/plepperguy/pleppervr-updater/internal/launcher"
	"github.com/plepperguy/pleppervr-updater/internal/logger"
	"github.com/plepperguy/pleppervr-updater/internal/release"
	"github.com/plepperguy/pleppervr-updater/internal/workspace"
)

const (
	// progressStep is the percentage between two progress log lines.
	progressStep = 10
	// unknownSizeStep is the byte count between two progress log lines when the size is unknown.
	unknownSizeStep = 5 << 20

	logFileMode os.FileMode = 0o644
)

var (
	// ErrLauncherMissing is returned when the Prism Launcher executable cannot be found.
	ErrLauncherMissing = errors.New("prism launcher not found")
	// ErrUnexpected is returned when the run stops on a panic.
	ErrUnexpected = errors.New("unexpected updater failure")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the settings file; empty means the file beside the executable.
	ConfigPath string
	// ScratchBase is where the scratch workspace is created; empty means the OS temp dir.
	ScratchBase string
	// APIBaseURL overrides the GitHub API root.
	APIBaseURL string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// NoBackup disables state preservation regardless of the settings file.
	NoBackup bool
	// NoLaunch disables the game start regardless of the settings file.
	NoLaunch bool
}

// runner holds the configuration and collaborators of a single run.
// It is intentionally unexported, call Run(ctx, Options) from callers.
type runner struct {
	cfg        *config.Config
	workspace  *workspace.Workspace
	releases   *release.Client
	downloader *download.Downloader
	prism      *launcher.Prism
	backups    *backup.Manager
	report     *Report
	logFile    *os.File
}

// Run executes the update workflow and is the public entry point for the CLI.
// The returned report is never nil. The scratch workspace is removed before
// Run returns, including when the workflow panics.
func Run(ctx context.Context, opts *Options) (*Report, error) {
	if opts == nil {
		opts = new(Options)
	}

	runID := uuid.NewString()

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	// Configuration problems are logged and never stop the run.
	cfg, loadErr := config.Load(configPath)
	level, levelKnown := applyOverrides(cfg, opts)

	ctx = logger.WithLevel(ctx, level)
	ctx = logger.WithName(ctx, "pleppervr-updater")
	ctx = logger.WithKV(ctx, "run", runID)

	if loadErr != nil {
		logger.WarnKV(ctx, "Failed to load external configuration, using defaults", "path", configPath, "error", loadErr)
	} else {
		logger.DebugKV(ctx, "Configuration loaded", "path", configPath)
	}

	if !levelKnown {
		logger.WarnKV(ctx, "Unknown log level, using info", "level", cfg.LogLevel)
	}

	u := newRunner(cfg, opts)
	u.report.RunID = runID

	return u.execute(ctx)
}

// newRunner wires the collaborators of a run.
func newRunner(cfg *config.Config, opts *Options) *runner {
	return &runner{
		cfg:       cfg,
		workspace: workspace.New(opts.ScratchBase),
		releases: release.NewClient(
			release.WithBaseURL(opts.APIBaseURL),
			release.WithToken(cfg.GitHubToken),
		),
		downloader: download.New(),
		prism:      launcher.NewPrism(cfg.PrismLauncherPath, cfg.PrismDataDir),
		backups:    backup.NewManager(nil),
		report: &Report{
			Repository:     cfg.RepoOwner + "/" + cfg.RepoName,
			ImportExitCode: -1,
		},
	}
}

// applyOverrides applies command line options on top of the loaded settings
// and returns the console level of the run.
func applyOverrides(cfg *config.Config, opts *Options) (zapcore.Level, bool) {
	if opts.NoBackup {
		cfg.EnableBackup = false
	}

	if opts.NoLaunch {
		cfg.LaunchAfterUpdate = false
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	return logger.ParseLogLevel(cfg.LogLevel)
}

// execute runs the workflow, turns a panic into ErrUnexpected and removes
// the scratch workspace on every path.
func (u *runner) execute(ctx context.Context) (report *Report, err error) {
	defer u.cleanup(ctx)

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorKV(ctx, "Updater stopped unexpectedly", "panic", recovered)
			err = fmt.Errorf("%w: %v", ErrUnexpected, recovered)
		}

		report = u.report
	}()

	if err = u.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)
		return u.report, err
	}

	return u.report, nil
}

// Run executes the workflow for this runner instance:
// 1) Check the launcher executable.
// 2) Prepare the scratch workspace.
// 3) Resolve the instance directory.
// 4) Fetch the latest release.
// 5) Download the archive.
// 6) Back up user state.
// 7) Import the archive.
// 8) Restore user state.
// 9) Launch the game.
func (u *runner) Run(ctx context.Context) error {
	u.logBanner(ctx)

	u.enter(ctx, StateCheckLauncherExists)

	if err := u.prism.Exists(); err != nil {
		logger.ErrorKV(ctx, "Prism Launcher not found", "path", u.cfg.PrismLauncherPath, "error", err)
		logger.Error(ctx, "Please check PrismLauncherPath in the configuration")

		return fmt.Errorf("%w: %w", ErrLauncherMissing, err)
	}

	logger.Success(ctx, "Prism Launcher found", "path", u.cfg.PrismLauncherPath)

	u.enter(ctx, StatePrepareScratch)

	if err := u.workspace.Prepare(); err != nil {
		return err
	}

	ctx = u.attachLogFile(ctx)

	u.enter(ctx, StateResolveInstance)

	instanceDir := launcher.InstanceDir(u.cfg.PrismDataDir, u.cfg.InstanceName)
	gameDir := launcher.GameDir(instanceDir)

	instanceExists := u.backups.Exists(instanceDir)
	if instanceExists {
		logger.InfoKV(ctx, "Current instance found", "instance", u.cfg.InstanceName)
	} else {
		logger.WarnKV(ctx, "No existing instance found, will create new one", "instance", u.cfg.InstanceName)
	}

	if u.cfg.SkipUpdateIfCurrent {
		logger.Warn(ctx, "SkipUpdateIfCurrent is set but version checks are not implemented, updating anyway")
	}

	archivePath, err := u.fetchArchive(ctx)
	if err != nil {
		return err
	}

	backupDir := u.workspace.BackupDir()

	switch {
	case !u.cfg.EnableBackup:
		u.skip(ctx, StateBackup, "backups are disabled")
	case !instanceExists:
		u.skip(ctx, StateBackup, "instance directory not found")
	default:
		u.enter(ctx, StateBackup)
		logger.Info(ctx, "[3/5] Backing up user configurations...")

		u.report.BackedUp = u.backups.Preserve(ctx, gameDir, backupDir, u.cfg.BackupItems)
		logger.Success(ctx, "Configuration backup completed", "items", len(u.report.BackedUp))
	}

	u.importArchive(ctx, archivePath)

	if u.cfg.EnableBackup && u.backups.Exists(backupDir) {
		u.enter(ctx, StateRestore)
		logger.Info(ctx, "[5/5] Restoring user configurations...")

		u.report.Restored = u.backups.Restore(ctx, backupDir, gameDir, u.report.BackedUp)
		logger.Success(ctx, "User configurations restored", "items", len(u.report.Restored))
	} else {
		u.skip(ctx, StateRestore, "no backup was made")
	}

	u.launch(ctx)

	u.enter(ctx, StateDone)
	logger.Success(ctx, "Update process completed!")

	return nil
}

// fetchArchive resolves the latest release asset and downloads it into the workspace.
func (u *runner) fetchArchive(ctx context.Context) (string, error) {
	u.enter(ctx, StateFetchReleaseInfo)
	logger.Info(ctx, "[1/5] Fetching latest release information...")

	asset, rel, err := u.releases.GetLatestReleaseAsset(ctx, u.cfg.RepoOwner, u.cfg.RepoName, u.cfg.ArchiveExtension)
	if rel != nil {
		u.report.ReleaseTag = rel.TagName
	}

	if err != nil {
		logger.ErrorKV(ctx, "Failed to fetch release information", "repository", u.report.Repository, "error", err)
		return "", fmt.Errorf("fetch release info: %w", err)
	}

	u.report.AssetName = asset.Name
	logger.Success(ctx, "Found release archive", "asset", asset.Name, "release", rel.TagName)

	u.enter(ctx, StateDownload)
	logger.Info(ctx, "[2/5] Downloading release archive...")

	archivePath := u.workspace.ArchivePath(u.cfg.ArchiveExtension)

	written, err := u.downloader.DownloadFile(ctx, asset.DownloadURL, archivePath, progressLogger(ctx))
	u.report.BytesDownloaded = written

	if err != nil {
		logger.ErrorKV(ctx, "Failed to download release archive", "url", asset.DownloadURL, "error", err)
		return "", fmt.Errorf("download archive: %w", err)
	}

	logger.Success(ctx, "Downloaded successfully", "bytes", written)

	return archivePath, nil
}

// importArchive hands the archive to the launcher. Failures are warnings.
func (u *runner) importArchive(ctx context.Context, archivePath string) {
	u.enter(ctx, StateImport)
	logger.Info(ctx, "[4/5] Importing archive into Prism Launcher...")

	if running, err := u.prism.Running(); err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
	} else if running {
		logger.Warn(ctx, "Prism Launcher is already running, the import is handled by the running window")
	}

	code, err := u.prism.Import(ctx, archivePath)
	u.report.ImportExitCode = code

	switch {
	case err != nil:
		logger.WarnKV(ctx, "Failed to run the import", "error", err)
	case code != 0:
		logger.WarnKV(ctx, "Import process may have failed", "exit_code", code)
	default:
		logger.Success(ctx, "Archive imported successfully")
	}
}

// launch starts the instance when enabled. Failures are warnings.
func (u *runner) launch(ctx context.Context) {
	if !u.cfg.LaunchAfterUpdate {
		u.skip(ctx, StateLaunch, "auto-launch is disabled")
		logger.Info(ctx, "Update completed. Auto-launch is disabled.")

		return
	}

	u.enter(ctx, StateLaunch)
	logger.InfoKV(ctx, "Starting Prism Launcher", "instance", u.cfg.InstanceName)

	if err := u.prism.Launch(u.cfg.InstanceName); err != nil {
		logger.WarnKV(ctx, "Failed to launch game automatically", "error", err)
		logger.Warn(ctx, "Please launch the game manually from Prism Launcher")

		return
	}

	u.report.Launched = true
	logger.Success(ctx, "Game launched successfully!")
}

// attachLogFile mirrors the run log into the workspace. A log file that
// cannot be opened only costs the mirror.
func (u *runner) attachLogFile(ctx context.Context) context.Context {
	file, err := os.OpenFile(u.workspace.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		logger.DebugKV(ctx, "Log file unavailable", "error", err)
		return ctx
	}

	u.logFile = file

	return logger.WithFile(ctx, file)
}

func (u *runner) logBanner(ctx context.Context) {
	line := strings.Repeat("=", 40)

	logger.Info(ctx, line)
	logger.Info(ctx, "PlepperVR Auto-Updater and Launcher")
	logger.Info(ctx, line)
	logger.InfoKV(ctx, "Target", "repository", u.report.Repository, "instance", u.cfg.InstanceName)
}

func (u *runner) enter(ctx context.Context, state State) {
	u.report.States = append(u.report.States, state)
	logger.DebugKV(ctx, "Entering state", "state", state)
}

func (u *runner) skip(ctx context.Context, state State, reason string) {
	u.report.Skipped = append(u.report.Skipped, state)
	logger.InfoKV(ctx, "Skipping step", "state", state, "reason", reason)
}

// cleanup closes the log file and removes the scratch workspace.
func (u *runner) cleanup(ctx context.Context) {
	if u.logFile != nil {
		_ = u.logFile.Close()
		u.logFile = nil
	}

	if err := u.workspace.Remove(); err != nil {
		logger.WarnKV(ctx, "Failed to clean up temporary files", "path", u.workspace.Root(), "error", err)
	}

	logger.Info(ctx, "The updater has been stopped")
}

// progressLogger reports download progress every progressStep percent, or
// every unknownSizeStep bytes when the server did not send a size.
func progressLogger(ctx context.Context) download.ProgressFunc {
	nextPercent := progressStep
	nextBytes := int64(unknownSizeStep)

	return func(written, total int64) {
		pct, known := download.Percent(written, total)
		if !known {
			if written >= nextBytes {
				logger.InfoKV(ctx, "Downloading", "bytes", written, "total", "unknown")
				nextBytes = written + unknownSizeStep
			}

			return
		}

		if pct >= nextPercent {
			logger.Infof(ctx, "Downloading: %d%% complete", pct)
			nextPercent = pct - pct%progressStep + progressStep
		}
	}
}
