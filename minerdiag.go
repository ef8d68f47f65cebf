// Package minerdiag diagnoses a long-running miner process and its
// fleet of credentialed sub-identities from log text and filesystem
// metadata, without live network calls. The inference engine lives in
// core; collaborators that touch the host live in host; this package
// wires both behind the diagnostic operations and exposes them as MCP
// tools.
package minerdiag

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afsarctg/minerdiag/core"
	"github.com/afsarctg/minerdiag/host"
)

// CatalogLoader supplies the known-error catalog. Load degrades to an
// empty catalog instead of failing.
type CatalogLoader interface {
	Load() core.Catalog
}

// LogSource supplies a bounded window of recent log text.
type LogSource interface {
	RecentLogs(ctx context.Context, lines int) (string, error)
}

// SupervisorSource reports the supervised process state.
type SupervisorSource interface {
	Status(ctx context.Context) (host.SupervisorStatus, error)
}

// LedgerSource reports the miner's position on the chain ledger.
type LedgerSource interface {
	Position(ctx context.Context) (host.LedgerPosition, error)
}

// StatsSource reports record counts from the miner's storage.
type StatsSource interface {
	Stats(ctx context.Context) (host.DataStats, error)
}

// CredentialSource resolves an identity's credential artifact.
type CredentialSource interface {
	Lookup(identity int) core.CredentialInfo
}

// Diagnostics ties the configuration, the collaborators, and the
// inference engine together. Every operation returns a fully-formed
// record; collaborator failures surface as error fields on the
// affected sub-result and never abort the request.
type Diagnostics struct {
	Config      Config
	Catalog     CatalogLoader
	Logs        LogSource
	Supervisor  SupervisorSource
	Ledger      LedgerSource
	Store       StatsSource
	Credentials CredentialSource

	logger *log.Logger
	ops    *opLogger
}

// New wires a Diagnostics against the live host: pm2 for process state
// and logs, the filesystem for catalog and credentials, SQLite for
// data stats. The logger writes to stderr; stdout belongs to the MCP
// transport.
func New(cfg Config) *Diagnostics {
	logger := log.New(os.Stderr, "[minerdiag] ", log.LstdFlags)
	runner := host.OSRunner{}
	supervisor := host.NewSupervisorClient(runner, cfg.ProcessName, cfg.SupervisorTimeout.Std(), cfg.LogTimeout.Std())

	logger.Printf("Diagnostics initialized: process=%s, catalog=%s, identities=%d-%d",
		cfg.ProcessName, cfg.CatalogPath, cfg.Identities.First, cfg.Identities.Last)

	return &Diagnostics{
		Config:      cfg,
		Catalog:     host.NewCatalogFile(cfg.CatalogPath),
		Logs:        supervisor,
		Supervisor:  supervisor,
		Ledger:      host.NewLedgerClient(runner, cfg.LedgerCommand, cfg.LedgerTimeout.Std()),
		Store:       host.NewDataStore(cfg.DatabasePath, cfg.StoreTimeout.Std()),
		Credentials: host.NewCredentialDir(cfg.CredentialDir),
		logger:      logger,
		ops:         newOpLogger(logger),
	}
}

// ScanReport is a ScanResult plus the error field for a failed log
// fetch. A fetch failure leaves the scan running over empty text.
type ScanReport struct {
	core.ScanResult
	Error string `json:"error,omitempty"`
}

// ScanLogs reloads the catalog and matches it against the most recent
// log window. lines <= 0 uses the configured default.
func (d *Diagnostics) ScanLogs(ctx context.Context, lines int) ScanReport {
	requestID := uuid.NewString()
	start := time.Now()

	if lines <= 0 {
		lines = d.Config.DefaultScanLines
	}

	catalog := d.Catalog.Load()

	var report ScanReport
	logText, err := d.Logs.RecentLogs(ctx, lines)
	if err != nil {
		report.Error = err.Error()
		logText = ""
	}

	report.ScanResult = core.ScanLog(logText, catalog, lines)
	d.ops.logOp("scan_logs", requestID, time.Since(start), report.Error)
	return report
}

// LookupResult lists the catalog entries matching a query.
type LookupResult struct {
	Query   string              `json:"query"`
	Matches []core.CatalogEntry `json:"matches"`
	Count   int                 `json:"count"`
}

// LookupError searches the catalog for a query, first as an exact
// case-insensitive id, then as a case-insensitive substring of each
// entry's serialized content. Entries matching by id also satisfy the
// substring form.
func (d *Diagnostics) LookupError(query string) LookupResult {
	requestID := uuid.NewString()
	start := time.Now()

	catalog := d.Catalog.Load()
	needle := strings.ToLower(query)

	matches := []core.CatalogEntry{}
	for _, entry := range catalog.Entries {
		if strings.EqualFold(entry.ID, query) {
			matches = append(matches, entry)
			continue
		}
		serialized, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(serialized)), needle) {
			matches = append(matches, entry)
		}
	}

	d.ops.logOp("lookup_error", requestID, time.Since(start), "")
	return LookupResult{Query: query, Matches: matches, Count: len(matches)}
}

// CheckIdentities classifies the given identities from credential
// artifacts and recent log evidence and rolls them into a fleet
// verdict. An empty identity list checks the configured default range.
// No live probes are issued.
func (d *Diagnostics) CheckIdentities(ctx context.Context, identities []int) core.FleetReport {
	requestID := uuid.NewString()
	start := time.Now()

	if len(identities) == 0 {
		identities = d.Config.Identities.Numbers()
	}

	var fetchErr string
	logText, err := d.Logs.RecentLogs(ctx, d.Config.IdentityLogLines)
	if err != nil {
		fetchErr = err.Error()
		logText = ""
	}

	tagger := core.IdentityTagger{
		TagFormat:      d.Config.IdentityTagFormat,
		ActivityPrefix: d.Config.ActivityPrefix,
	}
	records := core.ClassifyIdentities(identities, logText, d.Credentials.Lookup, tagger)
	report := core.AggregateFleet(records)

	report.Notes = "Status based on credential files + recent logs (no live probes)"
	if fetchErr != "" {
		report.Notes += "; log fetch failed: " + fetchErr
	}

	d.ops.logOp("check_identities", requestID, time.Since(start), fetchErr)
	return report
}

// DataStatsReport is the storage pass-through result.
type DataStatsReport struct {
	Timestamp time.Time      `json:"timestamp"`
	Stats     host.DataStats `json:"stats"`
	Error     string         `json:"error,omitempty"`
}

// GetDataStats passes through record counts from the miner's storage.
func (d *Diagnostics) GetDataStats(ctx context.Context) DataStatsReport {
	requestID := uuid.NewString()
	start := time.Now()

	report := DataStatsReport{Timestamp: time.Now().UTC()}
	stats, err := d.Store.Stats(ctx)
	if err != nil {
		report.Error = err.Error()
	} else {
		report.Stats = stats
	}

	d.ops.logOp("get_data_stats", requestID, time.Since(start), report.Error)
	return report
}

// SupervisorReport is the supervisor sub-result of a health report.
type SupervisorReport struct {
	host.SupervisorStatus
	Error string `json:"error,omitempty"`
}

// LedgerReport is the ledger sub-result of a health report.
type LedgerReport struct {
	Position *host.LedgerPosition `json:"position,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// HealthReport composes the supervisor and ledger checks. Overall is
// healthy only when the supervised process reports online.
type HealthReport struct {
	Timestamp  time.Time        `json:"timestamp"`
	Supervisor SupervisorReport `json:"pm2"`
	Ledger     LedgerReport     `json:"ledger"`
	Overall    string           `json:"overall"`
}

// GetExternalHealthReport queries the process supervisor and the
// ledger. Each collaborator failure is scoped to its own sub-result;
// one failing never stops the other from answering.
func (d *Diagnostics) GetExternalHealthReport(ctx context.Context) HealthReport {
	requestID := uuid.NewString()
	start := time.Now()

	report := HealthReport{Timestamp: time.Now().UTC()}

	status, err := d.Supervisor.Status(ctx)
	if err != nil {
		report.Supervisor.Error = err.Error()
	} else {
		report.Supervisor.SupervisorStatus = status
	}

	position, err := d.Ledger.Position(ctx)
	if err != nil {
		report.Ledger.Error = err.Error()
	} else {
		report.Ledger.Position = &position
	}

	report.Overall = "critical"
	if report.Supervisor.Online() {
		report.Overall = "healthy"
	}

	d.ops.logOp("get_health_report", requestID, time.Since(start),
		strings.TrimSpace(report.Supervisor.Error+" "+report.Ledger.Error))
	return report
}
