package complexity

import "time"

// Level classifies a query by how open-ended it is. Cache TTL is a
// property of this classification: short factual queries stay valid far
// longer than open-ended ones.
type Level string

// Complexity levels.
const (
	// Simple covers short factual lookups.
	Simple Level = "simple"
	// Standard covers ordinary multi-term queries.
	Standard Level = "standard"
	// Open covers open-ended or analytical queries whose answers drift.
	Open Level = "open"
)

// TTLPolicy maps a complexity level to a cache time-to-live.
// A zero TTL means the level is not cacheable.
type TTLPolicy map[Level]time.Duration

// DefaultTTLPolicy returns the stock policy: long TTL for factual queries,
// short for standard ones, none for open-ended ones.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Simple:   time.Hour,
		Standard: 10 * time.Minute,
		Open:     0,
	}
}

// TTL returns the time-to-live for a level, zero if the level is unknown.
func (p TTLPolicy) TTL(l Level) time.Duration { return p[l] }

// Cacheable reports whether answers at this level should be cached.
func (p TTLPolicy) Cacheable(l Level) bool { return p[l] > 0 }
