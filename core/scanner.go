package core

import (
	"regexp"
	"time"
)

// ScanStatus is the verdict for a single log scan.
type ScanStatus string

const (
	ScanHealthy  ScanStatus = "healthy"
	ScanWarning  ScanStatus = "warning"
	ScanCritical ScanStatus = "critical"
)

// Finding records one matched catalog entry for a scan. A pattern that
// occurs many times in the text still produces a single Finding;
// presence is what matters, not frequency.
type Finding struct {
	EntryID   string   `json:"id"`
	Category  string   `json:"category"`
	Severity  Severity `json:"severity"`
	RootCause string   `json:"root_cause"`
	Fix       string   `json:"fix"`
}

// ScanResult is the outcome of matching one catalog against one log
// window. Findings keep catalog order.
type ScanResult struct {
	Timestamp      time.Time  `json:"timestamp"`
	LinesScanned   int        `json:"lines_scanned"`
	CatalogVersion string     `json:"catalog_version"`
	Findings       []Finding  `json:"errors_found"`
	Count          int        `json:"count"`
	Status         ScanStatus `json:"status"`
}

// ScanLog evaluates every catalog entry against logText, case
// insensitively, in catalog order. Entries whose patterns do not
// compile are skipped without aborting the scan. linesScanned is
// passed through for traceability only.
func ScanLog(logText string, catalog Catalog, linesScanned int) ScanResult {
	findings := []Finding{}
	critical := false

	for _, entry := range catalog.Entries {
		if entry.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + entry.Pattern)
		if err != nil {
			continue
		}
		if !re.MatchString(logText) {
			continue
		}
		findings = append(findings, Finding{
			EntryID:   entry.ID,
			Category:  entry.Category,
			Severity:  entry.Severity,
			RootCause: entry.RootCause,
			Fix:       entry.Fix,
		})
		if entry.Severity == SeverityHigh {
			critical = true
		}
	}

	status := ScanHealthy
	if len(findings) > 0 {
		if critical {
			status = ScanCritical
		} else {
			status = ScanWarning
		}
	}

	return ScanResult{
		Timestamp:      time.Now().UTC(),
		LinesScanned:   linesScanned,
		CatalogVersion: catalog.Version,
		Findings:       findings,
		Count:          len(findings),
		Status:         status,
	}
}
