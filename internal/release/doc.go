// Package release resolves the newest published release of a GitHub
// repository and picks the asset carrying the modpack archive.
package release
