// Package logger wraps zap for the updater:
//   - a global sugared logger with a colored console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - a plain-text file mirror attached for the lifetime of one run,
//   - level parsing and convenience functions (Infof, WarnKV, Success, etc.).
//
// Every pipeline step accepts a context and extracts the logger from it, so
// fields such as the run id follow the run through all packages.
package logger
