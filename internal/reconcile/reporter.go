package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCLI formats a diff for terminal output. Unchanged entries are
// summarized, not listed.
func FormatCLI(r Result) string {
	changed := r.Changed()
	if len(changed) == 0 {
		return fmt.Sprintf("No differences found (%d files unchanged).\n", len(r.Entries))
	}

	var sb strings.Builder
	sb.WriteString("File changes detected since baseline:\n")

	for _, e := range changed {
		switch e.Status {
		case StatusAdded:
			sb.WriteString(fmt.Sprintf("  + %s: (new) → %s\n", e.Path, e.NewDigest))
		case StatusMissing:
			sb.WriteString(fmt.Sprintf("  - %s: %s → (unreadable)\n", e.Path, e.OldDigest))
		case StatusModified:
			sb.WriteString(fmt.Sprintf("  ~ %s: %s → %s\n", e.Path, e.OldDigest, e.NewDigest))
		}
	}

	counts := r.Counts()
	sb.WriteString(fmt.Sprintf("\n%d modified, %d added, %d missing, %d unchanged\n",
		counts[StatusModified], counts[StatusAdded], counts[StatusMissing], counts[StatusUnchanged]))
	return sb.String()
}

// FormatCI formats a diff as GitHub Actions warning annotations.
func FormatCI(r Result) string {
	changed := r.Changed()
	if len(changed) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, e := range changed {
		var msg string
		switch e.Status {
		case StatusAdded:
			msg = fmt.Sprintf("Integrity drift: %s added (digest: %s)", e.Path, e.NewDigest)
		case StatusMissing:
			msg = fmt.Sprintf("Integrity drift: %s missing (was: %s)", e.Path, e.OldDigest)
		case StatusModified:
			msg = fmt.Sprintf("Integrity drift: %s changed from '%s' to '%s'", e.Path, e.OldDigest, e.NewDigest)
		}
		sb.WriteString(fmt.Sprintf("::warning file=%s::%s\n", e.Path, msg))
	}

	sb.WriteString(fmt.Sprintf("\nIntegrity drift detected: %d change(s) against baseline\n", len(changed)))
	return sb.String()
}

// FormatJSON formats a diff as JSON, unchanged entries included.
func FormatJSON(r Result) (string, error) {
	if r.Entries == nil {
		r.Entries = []Entry{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
