package core

import (
	"fmt"
	"regexp"
	"sort"
)

// IdentityStatus classifies one credentialed sub-identity.
type IdentityStatus string

const (
	// IdentityMissing means no credential artifact exists for the identity
	IdentityMissing IdentityStatus = "missing"

	// IdentityActive means the identity shows recent scheduling activity
	// and no auth errors
	IdentityActive IdentityStatus = "active"

	// IdentityRateLimited means the identity hit rate limits without
	// recent activity
	IdentityRateLimited IdentityStatus = "rate_limited"

	// IdentityError means the identity shows auth/expiry errors
	IdentityError IdentityStatus = "error"

	// IdentityIdle means the credential exists but the logs show nothing
	IdentityIdle IdentityStatus = "idle"
)

// CredentialInfo describes a credential artifact by presence and age
// only. The artifact's content is never read.
type CredentialInfo struct {
	Present  bool
	AgeHours *float64
}

// CredentialLookup resolves an identity number to its credential
// artifact metadata.
type CredentialLookup func(identity int) CredentialInfo

// IdentityRecord is the per-identity classification result.
type IdentityRecord struct {
	Identity           int            `json:"account"`
	CredentialPresent  bool           `json:"credential_file"`
	CredentialAgeHours *float64       `json:"credential_age_hours,omitempty"`
	ActivityMentions   int            `json:"log_mentions"`
	RateLimitHits      int            `json:"rate_limits"`
	ErrorHits          int            `json:"errors"`
	Status             IdentityStatus `json:"status"`
}

// IdentityTagger builds the per-identity log tag used to scope regex
// searches to a single identity inside a shared log stream.
type IdentityTagger struct {
	// TagFormat renders the identity number into its log tag,
	// e.g. "twikit_account%d"
	TagFormat string

	// ActivityPrefix precedes the tag on scheduling/activity lines,
	// e.g. "X." in "X.twikit_account5 Scrapers ready"
	ActivityPrefix string
}

// DefaultTagger matches the log conventions of the supervised miner.
func DefaultTagger() IdentityTagger {
	return IdentityTagger{TagFormat: "twikit_account%d", ActivityPrefix: "X."}
}

// Tag returns the bare tag for an identity number.
func (t IdentityTagger) Tag(identity int) string {
	return fmt.Sprintf(t.TagFormat, identity)
}

// boundedTag is the tag as a regex fragment with a trailing non-digit
// boundary, so identity 1 never matches identity 12's lines.
func (t IdentityTagger) boundedTag(identity int) string {
	return regexp.QuoteMeta(t.Tag(identity)) + `(?:[^0-9]|$)`
}

// ClassifyIdentities evaluates each identity in ascending numeric
// order. An identity without a credential artifact is reported as
// missing and its log evidence is not mined. For the rest, three
// case-insensitive counts are taken over logText, each scoped to the
// identity's tag, and the status follows strict precedence:
// active (activity with no errors), rate_limited, error, idle.
// A rate-limit hit alone does not demote an identity with recent
// activity.
func ClassifyIdentities(identities []int, logText string, lookup CredentialLookup, tagger IdentityTagger) []IdentityRecord {
	ordered := dedupeSorted(identities)
	records := make([]IdentityRecord, 0, len(ordered))

	for _, id := range ordered {
		cred := lookup(id)
		if !cred.Present {
			records = append(records, IdentityRecord{
				Identity: id,
				Status:   IdentityMissing,
			})
			continue
		}

		tag := tagger.boundedTag(id)
		activity := countMatches(`(?i)`+regexp.QuoteMeta(tagger.ActivityPrefix)+tag, logText)
		rateLimits := countMatches(`(?i)(?:`+tag+`.*429|pagination.*429.*`+tag+`)`, logText)
		errors := countMatches(`(?i)`+tag+`.*(?:403|401|expired|suspended)`, logText)

		rec := IdentityRecord{
			Identity:           id,
			CredentialPresent:  true,
			CredentialAgeHours: cred.AgeHours,
			ActivityMentions:   activity,
			RateLimitHits:      rateLimits,
			ErrorHits:          errors,
		}

		switch {
		case activity > 0 && errors == 0:
			rec.Status = IdentityActive
		case rateLimits > 0:
			rec.Status = IdentityRateLimited
		case errors > 0:
			rec.Status = IdentityError
		default:
			rec.Status = IdentityIdle
		}

		records = append(records, rec)
	}

	return records
}

func countMatches(pattern, text string) int {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

func dedupeSorted(identities []int) []int {
	seen := make(map[int]struct{}, len(identities))
	out := make([]int, 0, len(identities))
	for _, id := range identities {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
