package core

// Severity classifies how serious a catalog entry is when it matches.
type Severity string

const (
	// SeverityLow represents nuisance-level errors
	SeverityLow Severity = "low"

	// SeverityMedium represents errors that degrade the miner
	SeverityMedium Severity = "medium"

	// SeverityHigh represents errors that take the miner down
	SeverityHigh Severity = "high"
)

// CatalogEntry is a known-error definition: a regex pattern plus the
// metadata needed to explain and fix a match.
type CatalogEntry struct {
	// Unique identifier, e.g. "X001"
	ID string `json:"id"`

	// Category groups related errors (network, auth, storage, ...)
	Category string `json:"category"`

	// Severity of the error when present in logs
	Severity Severity `json:"severity"`

	// Pattern is a regular expression evaluated case-insensitively.
	// An entry whose pattern does not compile stays in the catalog but
	// is skipped during matching.
	Pattern string `json:"pattern"`

	// RootCause is a human-readable explanation of the error
	RootCause string `json:"root_cause"`

	// Fix is the recommended remediation
	Fix string `json:"fix"`
}

// Catalog is a versioned, ordered list of known-error definitions.
type Catalog struct {
	Version string         `json:"version"`
	Entries []CatalogEntry `json:"errors"`
}

// EmptyCatalog returns the catalog used when no backing store is
// available. Scans against it always come back healthy.
func EmptyCatalog() Catalog {
	return Catalog{Version: "0", Entries: []CatalogEntry{}}
}
