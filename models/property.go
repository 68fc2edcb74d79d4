package models

import (
	"time"
)

// StoredListing is a PropertyRecord as kept across runs, keyed by fingerprint.
type StoredListing struct {
	PropertyRecord
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	FirstSeenAt time.Time `json:"first_seen_at" db:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at" db:"last_seen_at"`
	TimesSeen   int       `json:"times_seen" db:"times_seen"`
}
