// Package download streams a release asset to a local file with grab and
// reports progress while the transfer runs.
package download
