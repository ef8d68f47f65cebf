package minerdiag

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afsarctg/minerdiag/core"
	"github.com/afsarctg/minerdiag/host"
)

type stubCatalog struct{ catalog core.Catalog }

func (s stubCatalog) Load() core.Catalog { return s.catalog }

type stubLogs struct {
	text      string
	err       error
	lastLines int
}

func (s *stubLogs) RecentLogs(ctx context.Context, lines int) (string, error) {
	s.lastLines = lines
	return s.text, s.err
}

type stubSupervisor struct {
	status host.SupervisorStatus
	err    error
}

func (s stubSupervisor) Status(ctx context.Context) (host.SupervisorStatus, error) {
	return s.status, s.err
}

type stubLedger struct {
	position host.LedgerPosition
	err      error
}

func (s stubLedger) Position(ctx context.Context) (host.LedgerPosition, error) {
	return s.position, s.err
}

type stubStats struct {
	stats host.DataStats
	err   error
}

func (s stubStats) Stats(ctx context.Context) (host.DataStats, error) {
	return s.stats, s.err
}

type stubCredentials struct{ present map[int]bool }

func (s stubCredentials) Lookup(identity int) core.CredentialInfo {
	if s.present[identity] {
		age := 1.0
		return core.CredentialInfo{Present: true, AgeHours: &age}
	}
	return core.CredentialInfo{Present: false}
}

func testCatalog() core.Catalog {
	return core.Catalog{
		Version: "1.0",
		Entries: []core.CatalogEntry{
			{ID: "X001", Category: "network", Severity: core.SeverityHigh,
				Pattern: "connection refused", RootCause: "upstream down", Fix: "restart the miner"},
			{ID: "X003", Category: "rate_limit", Severity: core.SeverityMedium,
				Pattern: "429", RootCause: "throttled", Fix: "wait it out"},
		},
	}
}

func newTestDiagnostics(logs *stubLogs) *Diagnostics {
	cfg := DefaultConfig()
	cfg.Identities = IdentityRange{First: 1, Last: 3}
	logger := log.New(io.Discard, "", 0)
	return &Diagnostics{
		Config:      cfg,
		Catalog:     stubCatalog{catalog: testCatalog()},
		Logs:        logs,
		Supervisor:  stubSupervisor{},
		Ledger:      stubLedger{},
		Store:       stubStats{},
		Credentials: stubCredentials{},
		logger:      logger,
		ops:         newOpLogger(logger),
	}
}

func TestScanLogsEndToEnd(t *testing.T) {
	logs := &stubLogs{text: "2024-01-01 Connection Refused at line 5"}
	d := newTestDiagnostics(logs)

	report := d.ScanLogs(context.Background(), 0)

	assert.Equal(t, 500, logs.lastLines) // configured default
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "X001", report.Findings[0].EntryID)
	assert.Equal(t, core.ScanCritical, report.Status)
	assert.Empty(t, report.Error)
	assert.Equal(t, "1.0", report.CatalogVersion)
}

func TestScanLogsLogFetchFailure(t *testing.T) {
	logs := &stubLogs{err: errors.New("pm2 unreachable")}
	d := newTestDiagnostics(logs)

	report := d.ScanLogs(context.Background(), 200)

	// The scan still answers, over empty text, with the fetch failure
	// carried in the error field.
	assert.Equal(t, core.ScanHealthy, report.Status)
	assert.Equal(t, 0, report.Count)
	assert.Contains(t, report.Error, "pm2 unreachable")
	assert.Equal(t, 200, report.LinesScanned)
}

func TestLookupErrorByID(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})

	result := d.LookupError("x001")

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "X001", result.Matches[0].ID)
}

func TestLookupErrorBySubstring(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})

	// "refused" appears in X001's pattern; substring matches include
	// entries that would also match by id.
	result := d.LookupError("REFUSED")

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "X001", result.Matches[0].ID)
}

func TestLookupErrorNoMatches(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})

	result := d.LookupError("definitely-not-in-catalog")

	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Matches)
}

func TestCheckIdentitiesDefaultRange(t *testing.T) {
	logs := &stubLogs{text: "X.twikit_account1 Scrapers ready\ntwikit_account3 nothing notable"}
	d := newTestDiagnostics(logs)
	d.Credentials = stubCredentials{present: map[int]bool{1: true, 3: true}}

	report := d.CheckIdentities(context.Background(), nil)

	assert.Equal(t, d.Config.IdentityLogLines, logs.lastLines)
	require.Len(t, report.Identities, 3)
	assert.Equal(t, core.IdentityActive, report.Identities[0].Status)
	assert.Equal(t, core.IdentityMissing, report.Identities[1].Status)
	assert.Equal(t, core.IdentityIdle, report.Identities[2].Status)

	assert.Equal(t, 1, report.ActiveCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, 1, report.DegradedCount)
	assert.Equal(t, core.FleetDegraded, report.Overall)
	assert.Contains(t, report.Notes, "no live probes")
}

func TestCheckIdentitiesLogFetchFailure(t *testing.T) {
	logs := &stubLogs{err: errors.New("pm2 timed out")}
	d := newTestDiagnostics(logs)
	d.Credentials = stubCredentials{present: map[int]bool{1: true}}

	report := d.CheckIdentities(context.Background(), []int{1})

	// Without log evidence the identity degrades to idle, and the
	// fetch failure is surfaced in the notes.
	require.Len(t, report.Identities, 1)
	assert.Equal(t, core.IdentityIdle, report.Identities[0].Status)
	assert.Equal(t, core.FleetCritical, report.Overall)
	assert.Contains(t, report.Notes, "pm2 timed out")
}

func TestGetDataStatsPassThrough(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})
	d.Store = stubStats{stats: host.DataStats{Reddit: 10, X: 20, Total: 30, SizeMB: 1.5}}

	report := d.GetDataStats(context.Background())

	assert.Empty(t, report.Error)
	assert.Equal(t, int64(30), report.Stats.Total)
}

func TestGetDataStatsFailure(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})
	d.Store = stubStats{err: errors.New("database not found")}

	report := d.GetDataStats(context.Background())

	assert.Contains(t, report.Error, "database not found")
}

func TestHealthReportHealthy(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})
	d.Supervisor = stubSupervisor{status: host.SupervisorStatus{Found: true, Status: "online"}}
	d.Ledger = stubLedger{position: host.LedgerPosition{UID: 7, Incentive: 0.002}}

	report := d.GetExternalHealthReport(context.Background())

	assert.Equal(t, "healthy", report.Overall)
	assert.Empty(t, report.Supervisor.Error)
	require.NotNil(t, report.Ledger.Position)
	assert.Equal(t, 7, report.Ledger.Position.UID)
}

func TestHealthReportLedgerFailureDoesNotBlockSupervisor(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})
	d.Supervisor = stubSupervisor{status: host.SupervisorStatus{Found: true, Status: "online"}}
	d.Ledger = stubLedger{err: errors.New("ledger timeout")}

	report := d.GetExternalHealthReport(context.Background())

	assert.Equal(t, "healthy", report.Overall)
	assert.True(t, report.Supervisor.Online())
	assert.Contains(t, report.Ledger.Error, "ledger timeout")
	assert.Nil(t, report.Ledger.Position)
}

func TestHealthReportSupervisorDown(t *testing.T) {
	d := newTestDiagnostics(&stubLogs{})
	d.Supervisor = stubSupervisor{status: host.SupervisorStatus{Found: true, Status: "stopped"}}

	report := d.GetExternalHealthReport(context.Background())

	assert.Equal(t, "critical", report.Overall)
}
