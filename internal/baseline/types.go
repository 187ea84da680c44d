package baseline

import "time"

// Record is one baseline entry: the last recorded digest for a tracked path.
// The path is the unique key; there is at most one record per path.
type Record struct {
	Path       string    `json:"path"`
	Digest     string    `json:"digest"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Change is an accepted diff entry to be recorded: a path together with the
// digest that becomes its new baseline value.
type Change struct {
	Path   string
	Digest string
}
