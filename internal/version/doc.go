// Package version exposes build metadata for the updater.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// UserAgent renders the identifier sent with every HTTP request.
package version
