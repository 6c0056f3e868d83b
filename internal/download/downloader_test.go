package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type progressRecorder struct {
	mu     sync.Mutex
	calls  int
	last   int64
	totals []int64
}

func (p *progressRecorder) record(written, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.last = written
	p.totals = append(p.totals, total)
}

// TestDownloadFile checks contents, byte count and final progress report.
func TestDownloadFile(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("mrpack"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	destination := filepath.Join(t.TempDir(), "latest.mrpack")
	recorder := new(progressRecorder)

	written, err := New().WithProgressInterval(time.Millisecond).
		DownloadFile(context.Background(), server.URL+"/pack.mrpack", destination, recorder.record)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), written)

	contents, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, payload, contents)

	require.Positive(t, recorder.calls)
	require.EqualValues(t, len(payload), recorder.last)
}

// TestDownloadFileUnknownSize ensures a chunked response without Content-Length still completes.
func TestDownloadFileUnknownSize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		for i := 0; i < 3; i++ {
			_, _ = w.Write([]byte("chunk"))
			flusher.Flush()
		}
	}))
	t.Cleanup(server.Close)

	destination := filepath.Join(t.TempDir(), "latest.mrpack")
	recorder := new(progressRecorder)

	written, err := New().DownloadFile(context.Background(), server.URL, destination, recorder.record)
	require.NoError(t, err)
	require.EqualValues(t, 15, written)
	require.EqualValues(t, 15, recorder.last)
}

// TestDownloadFileBadStatus maps HTTP failures to ErrNetwork.
func TestDownloadFileBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := New().DownloadFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "x"), nil)
	require.ErrorIs(t, err, ErrNetwork)
}

// TestDownloadFileCancelled stops a stalled transfer through the context.
func TestDownloadFileCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)

		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := New().DownloadFile(ctx, server.URL, filepath.Join(t.TempDir(), "x"), nil)
	require.ErrorIs(t, err, ErrNetwork)
}

// TestDownloadFileMissingDirectory reports local failures as ErrIO without touching the network.
func TestDownloadFileMissingDirectory(t *testing.T) {
	t.Parallel()

	destination := filepath.Join(t.TempDir(), "absent", "latest.mrpack")

	_, err := New().DownloadFile(context.Background(), "http://127.0.0.1:1/never", destination, nil)
	require.ErrorIs(t, err, ErrIO)
}

// TestPercent covers known and unknown totals.
func TestPercent(t *testing.T) {
	t.Parallel()

	pct, ok := Percent(50, 200)
	require.True(t, ok)
	require.Equal(t, 25, pct)

	pct, ok = Percent(300, 200)
	require.True(t, ok)
	require.Equal(t, 100, pct)

	_, ok = Percent(10, -1)
	require.False(t, ok)
}
