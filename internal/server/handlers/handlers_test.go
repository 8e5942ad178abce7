package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"runboard/internal/archive"
	"runboard/internal/catalog"
	"runboard/internal/observability"
	"runboard/internal/registry"
	"runboard/internal/runner"
)

// Mock runner
type mockRunner struct {
	started  []runner.StartOptions
	killResp bool
	killed   []string
}

func (m *mockRunner) Start(opts runner.StartOptions) {
	m.started = append(m.started, opts)
}

func (m *mockRunner) Kill(jobID string) bool {
	m.killed = append(m.killed, jobID)
	return m.killResp
}

// Mock archive
type mockArchive struct {
	listResp []archive.Record
	listErr  error
	getResp  archive.Record
	getErr   error
	pingErr  error

	// Spies (to verify arguments passed by handlers)
	capturedLimit int
}

func (m *mockArchive) List(ctx context.Context, limit int) ([]archive.Record, error) {
	m.capturedLimit = limit
	return m.listResp, m.listErr
}

func (m *mockArchive) Get(ctx context.Context, jobID string) (archive.Record, error) {
	return m.getResp, m.getErr
}

func (m *mockArchive) Ping(ctx context.Context) error {
	return m.pingErr
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Automation{
		{ID: "backup", Name: "Backup", Description: "Nightly backup", Category: "maintenance", Command: "backup.py"},
		{ID: "noop", Name: "No-op", Command: "noop.py"},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}

func newTestHandlers(t *testing.T, reg *registry.Registry, run JobRunner, arch ArchiveStore) *Handlers {
	t.Helper()

	// The default global meter provider is a no-op, so instruments record
	// nothing in tests.
	metrics, err := observability.NewMetrics()
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	return New(Deps{
		Registry: reg,
		Catalog:  testCatalog(t),
		Runner:   run,
		Archive:  arch,
		Metrics:  metrics,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
