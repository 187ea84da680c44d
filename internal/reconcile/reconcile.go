package reconcile

import (
	"sort"
	"sync"

	"fimon/internal/baseline"
	"fimon/internal/digest"
)

// Status classifies one tracked path against the baseline.
type Status string

const (
	StatusUnchanged Status = "unchanged" // digests present and equal
	StatusModified  Status = "modified"  // digests present and different
	StatusAdded     Status = "added"     // hashable file with no baseline record
	StatusMissing   Status = "missing"   // baseline record whose file is unreadable
)

// Entry is the comparison result for a single path.
type Entry struct {
	Path      string `json:"path"`
	Status    Status `json:"status"`
	OldDigest string `json:"oldDigest,omitempty"`
	NewDigest string `json:"newDigest,omitempty"`
}

// Result is the ordered outcome of one reconciliation run. It lives in
// memory only; persisting accepted entries is a separate explicit commit.
type Result struct {
	Entries []Entry `json:"entries"`
}

// Changed returns the entries whose status is not unchanged.
func (r Result) Changed() []Entry {
	var changed []Entry
	for _, e := range r.Entries {
		if e.Status != StatusUnchanged {
			changed = append(changed, e)
		}
	}
	return changed
}

// HasChanges reports whether any entry differs from the baseline.
func (r Result) HasChanges() bool {
	for _, e := range r.Entries {
		if e.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

// Counts returns the number of entries per status.
func (r Result) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, e := range r.Entries {
		counts[e.Status]++
	}
	return counts
}

// Accepted returns the changes a commit should record: one per modified or
// added entry. Missing entries are deliberately absent; their records stay
// in the baseline until the content reappears.
func (r Result) Accepted() []baseline.Change {
	var changes []baseline.Change
	for _, e := range r.Entries {
		if e.Status == StatusModified || e.Status == StatusAdded {
			changes = append(changes, baseline.Change{Path: e.Path, Digest: e.NewDigest})
		}
	}
	return changes
}

// Engine computes diffs between current file contents and baseline records.
type Engine struct {
	Algo    digest.Algo
	Workers int // concurrent hash computations; values below 1 mean sequential
}

type outcome struct {
	digest string
	err    error
}

// Reconcile hashes every tracked path and classifies it against records.
// It is a pure read: the store is never mutated. Entries keep the order of
// tracked; baseline paths the tracked list no longer names are appended
// after, sorted by path, as missing. Per-file read failures never abort
// the run, they classify as missing.
func (e Engine) Reconcile(tracked []string, records []baseline.Record) Result {
	recorded := make(map[string]string, len(records))
	for _, r := range records {
		recorded[r.Path] = r.Digest
	}

	outcomes := e.digestAll(tracked)

	var result Result
	trackedSet := make(map[string]bool, len(tracked))
	for i, path := range tracked {
		trackedSet[path] = true
		old, known := recorded[path]
		out := outcomes[i]
		switch {
		case out.err != nil && known:
			result.Entries = append(result.Entries, Entry{
				Path: path, Status: StatusMissing, OldDigest: old,
			})
		case out.err != nil:
			// Unreadable and never recorded: nothing to compare against.
		case !known:
			result.Entries = append(result.Entries, Entry{
				Path: path, Status: StatusAdded, NewDigest: out.digest,
			})
		case out.digest == old:
			result.Entries = append(result.Entries, Entry{
				Path: path, Status: StatusUnchanged, OldDigest: old, NewDigest: out.digest,
			})
		default:
			result.Entries = append(result.Entries, Entry{
				Path: path, Status: StatusModified, OldDigest: old, NewDigest: out.digest,
			})
		}
	}

	var orphaned []string
	for _, r := range records {
		if !trackedSet[r.Path] {
			orphaned = append(orphaned, r.Path)
		}
	}
	sort.Strings(orphaned)
	for _, path := range orphaned {
		result.Entries = append(result.Entries, Entry{
			Path: path, Status: StatusMissing, OldDigest: recorded[path],
		})
	}

	return result
}

// digestAll hashes the tracked paths with at most Workers concurrent
// readers, preserving input order. Each computation is independent and
// read-only, so concurrency is purely a throughput knob.
func (e Engine) digestAll(paths []string) []outcome {
	outcomes := make([]outcome, len(paths))

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			d, err := digest.File(e.Algo, path)
			outcomes[i] = outcome{digest: d, err: err}
			<-sem
		}(i, path)
	}
	wg.Wait()

	return outcomes
}
