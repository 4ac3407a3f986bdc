package watch

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("@article{k, title = {T}}"), 0o644))

	w, err := NewFileWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// A burst of writes collapses into one signal.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("@article{k, title = {T}}"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	select {
	case <-w.Changed():
		t.Fatal("burst produced a second signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	w, err := NewFileWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-w.Changed():
		t.Fatal("unrelated file must not trigger")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)

	r.IncCheck("file")
	r.IncCheck("file")
	r.IncCheck("schedule")
	r.ObserveCheckDuration(120 * time.Millisecond)
	r.SetIssueCounts(1, 2, 3)
	r.SetEntries(42)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, `bibcheck_checks_total{trigger="file"} 2`)
	assert.Contains(t, body, `bibcheck_checks_total{trigger="schedule"} 1`)
	assert.Contains(t, body, `bibcheck_issues{severity="warning"} 2`)
	assert.Contains(t, body, "bibcheck_entries 42")
}

func TestService_RunsStartupCheckAndStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("@article{k, title = {T}}"), 0o644))

	var calls atomic.Int32
	var triggers []string
	svc := NewService(path, time.Hour, 10*time.Millisecond, "", func(ctx context.Context, trigger string) (Outcome, error) {
		calls.Add(1)
		triggers = append(triggers, trigger)
		return Outcome{Entries: 1}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	// A file change triggers a second run.
	require.NoError(t, os.WriteFile(path, []byte("@article{k, title = {T2}}"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	assert.Equal(t, "startup", triggers[0])
	assert.True(t, strings.Contains(strings.Join(triggers, ","), "file"))
}
