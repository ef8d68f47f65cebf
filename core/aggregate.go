package core

import "time"

// FleetStatus is the aggregate verdict over all tracked identities.
type FleetStatus string

const (
	FleetHealthy  FleetStatus = "healthy"
	FleetDegraded FleetStatus = "degraded"
	FleetCritical FleetStatus = "critical"
)

// FleetReport rolls per-identity records into one verdict. Counts are
// strict; there is no weighting or ratio threshold.
type FleetReport struct {
	Timestamp     time.Time        `json:"timestamp"`
	Identities    []IdentityRecord `json:"accounts"`
	ActiveCount   int              `json:"active"`
	DegradedCount int              `json:"idle_or_rate_limited"`
	ErrorCount    int              `json:"errors"`
	Total         int              `json:"total"`
	Overall       FleetStatus      `json:"overall"`
	Notes         string           `json:"note,omitempty"`
}

// AggregateFleet folds identity records into a FleetReport. Missing
// credentials count as errors; idle and rate_limited count as
// degraded. The fleet is healthy only with at least one active
// identity and zero errors, degraded with activity despite errors,
// and critical whenever nothing is active.
func AggregateFleet(records []IdentityRecord) FleetReport {
	var active, degraded, errors int
	for _, rec := range records {
		switch rec.Status {
		case IdentityActive:
			active++
		case IdentityIdle, IdentityRateLimited:
			degraded++
		case IdentityError, IdentityMissing:
			errors++
		}
	}

	overall := FleetCritical
	if active > 0 {
		if errors == 0 {
			overall = FleetHealthy
		} else {
			overall = FleetDegraded
		}
	}

	return FleetReport{
		Timestamp:     time.Now().UTC(),
		Identities:    records,
		ActiveCount:   active,
		DegradedCount: degraded,
		ErrorCount:    errors,
		Total:         len(records),
		Overall:       overall,
	}
}
