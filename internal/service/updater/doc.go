// Package updater runs the update-and-launch workflow for the modpack.
//
// It resolves the latest release, downloads the archive into a scratch
// workspace, preserves user state from the Prism Launcher instance, imports
// the archive, restores the state and starts the game. Missing launcher,
// release lookup and download failures stop the run; every other failure is
// logged as a warning. The scratch workspace is removed on every exit path.
package updater
