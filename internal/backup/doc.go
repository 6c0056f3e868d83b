// Package backup preserves user state of a game instance across an update.
//
// Items are copied, never moved, into a backup directory and copied back
// after the import. Each item is handled independently; a failing item is
// logged and the rest continue.
package backup
