package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/plepperguy/pleppervr-updater/internal/version"
)

// DefaultProgressInterval is how often progress is reported during a transfer.
const DefaultProgressInterval = 250 * time.Millisecond

var (
	// ErrNetwork is returned when the remote file cannot be retrieved.
	ErrNetwork = errors.New("download failed")
	// ErrIO is returned when the local file cannot be written.
	ErrIO = errors.New("download write failed")
)

// ProgressFunc receives the bytes written so far and the expected total.
// A negative total means the size is unknown.
type ProgressFunc func(written, total int64)

// Downloader retrieves single files over HTTP.
type Downloader struct {
	client   *grab.Client
	interval time.Duration
}

// New returns a Downloader identifying itself with the updater User-Agent.
func New() *Downloader {
	client := grab.NewClient()
	client.UserAgent = version.UserAgent()

	return &Downloader{client: client, interval: DefaultProgressInterval}
}

// WithProgressInterval changes how often progress callbacks fire.
func (d *Downloader) WithProgressInterval(interval time.Duration) *Downloader {
	if interval > 0 {
		d.interval = interval
	}

	return d
}

// DownloadFile fetches url into destination and blocks until the transfer
// completes, fails or ctx is cancelled. It returns the number of bytes written.
// On failure a partial file may remain at destination.
func (d *Downloader) DownloadFile(ctx context.Context, url, destination string, onProgress ProgressFunc) (int64, error) {
	if onProgress == nil {
		onProgress = func(int64, int64) {}
	}

	if err := ensureParentDir(destination); err != nil {
		return 0, err
	}

	req, err := grab.NewRequest(destination, url)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	req = req.WithContext(ctx)
	req.NoResume = true

	resp := d.client.Do(req)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for done := false; !done; {
		select {
		case <-ticker.C:
			onProgress(resp.BytesComplete(), resp.Size())
		case <-resp.Done:
			done = true
		}
	}

	written := resp.BytesComplete()

	if err = resp.Err(); err != nil {
		return written, classify(err)
	}

	onProgress(written, resp.Size())

	return written, nil
}

// Percent converts progress into a whole percentage.
// It reports false when the total is unknown.
func Percent(written, total int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}

	pct := int(written * 100 / total)
	if pct > 100 {
		pct = 100
	}

	return pct, true
}

// ensureParentDir checks that destination can be created inside an existing directory.
func ensureParentDir(destination string) error {
	info, err := os.Stat(filepath.Dir(destination))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrIO, filepath.Dir(destination))
	}

	return nil
}

// classify wraps err with ErrIO for local filesystem failures and ErrNetwork otherwise.
func classify(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
