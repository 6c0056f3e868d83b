package updater

import "slices"

// State is a step of the update workflow.
type State string

// Workflow states in execution order.
const (
	StateCheckLauncherExists State = "CheckLauncherExists"
	StatePrepareScratch      State = "PrepareScratch"
	StateResolveInstance     State = "ResolveInstance"
	StateFetchReleaseInfo    State = "FetchReleaseInfo"
	StateDownload            State = "Download"
	StateBackup              State = "Backup"
	StateImport              State = "Import"
	StateRestore             State = "Restore"
	StateLaunch              State = "Launch"
	StateDone                State = "Done"
)

// Report describes what a run did. It is returned even when the run fails.
type Report struct {
	// RunID identifies the run in log lines.
	RunID string
	// Repository is the owner/name the release was resolved from.
	Repository string
	// States lists the states entered, in order.
	States []State
	// Skipped lists optional states that did not run.
	Skipped []State
	// ReleaseTag is the tag of the resolved release.
	ReleaseTag string
	// AssetName is the name of the downloaded asset.
	AssetName string
	// BytesDownloaded is the archive size written to disk.
	BytesDownloaded int64
	// BackedUp lists the items copied out of the instance.
	BackedUp []string
	// Restored lists the items copied back into the instance.
	Restored []string
	// ImportExitCode is the launcher exit code for the import, -1 if it did not run.
	ImportExitCode int
	// Launched is true when the game start was handed to the launcher.
	Launched bool
}

// Entered reports whether the run reached state.
func (r *Report) Entered(state State) bool {
	return slices.Contains(r.States, state)
}

// WasSkipped reports whether state was skipped.
func (r *Report) WasSkipped(state State) bool {
	return slices.Contains(r.Skipped, state)
}
