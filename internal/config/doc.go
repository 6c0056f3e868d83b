// Package config defines the updater settings and provides helpers to load,
// normalize and save them.
//
// Settings come from built-in defaults, an optional JSON or YAML file placed
// beside the executable and PLEPPER_* environment variables, in increasing
// order of precedence. A broken settings file never stops the updater: Load
// reports the problem and keeps the defaults.
package config
