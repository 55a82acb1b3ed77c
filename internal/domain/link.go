package domain

import "time"

// ResolutionStatus tells whether the canonical URL of a record came from a
// successful resolution or from the unexpanded input.
type ResolutionStatus string

const (
	StatusResolved         ResolutionStatus = "resolved"
	StatusResolutionFailed ResolutionStatus = "resolution_failed"
)

// LinkRecord is the stored, deduplicated mapping of one canonical URL.
//
// At most one record exists per CanonicalURL. ID is assigned once, when the
// record is first created, and never changes afterwards.
type LinkRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque short identifier used by the redirect endpoint.
	ID string `json:"id"`

	// RawInput is the exact string supplied by the caller.
	RawInput string `json:"rawInput"`

	// CanonicalURL is the dedup key.
	// Example: https://www.douyin.com/video/7300000000000000000
	CanonicalURL string `json:"canonicalUrl"`

	Platform Platform `json:"platform"`

	// ─────────────────────────────
	// Display metadata
	// (pure functions of CanonicalURL)
	// ─────────────────────────────

	Title     string `json:"title"`
	Domain    string `json:"domain"`
	Thumbnail string `json:"thumbnail,omitempty"`

	// ─────────────────────────────
	// Resolution outcome
	// ─────────────────────────────

	Status ResolutionStatus `json:"status"`

	// Failure holds the failure kind when Status is resolution_failed.
	Failure ErrorKind `json:"failure,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`

	// ClickCount is only incremented by the redirect endpoint.
	ClickCount int64 `json:"clickCount"`
}

// Failed reports whether the record was stored from an unresolved input.
func (r *LinkRecord) Failed() bool {
	return r.Status == StatusResolutionFailed
}
