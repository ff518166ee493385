package transform

import (
	"fmt"
	"io"
	"sort"
)

// Report summarizes one engine run.
type Report struct {
	Applied     map[string]int // Rewrites spliced, per rule key
	Skipped     map[string]int // Matches refused, per rule key
	Diagnostics []Diagnostic

	// Edits maps the rewritten statements back onto the input program, for
	// Splice. Nil when the output cannot be expressed that way.
	Edits []Edit
}

func newReport() *Report {
	return &Report{Applied: make(map[string]int), Skipped: make(map[string]int)}
}

func (r *Report) apply(rule string, diags []Diagnostic) {
	r.Applied[rule]++
	r.Diagnostics = append(r.Diagnostics, diags...)
}

func (r *Report) skip(rule string, diags []Diagnostic) {
	r.Skipped[rule]++
	r.Diagnostics = append(r.Diagnostics, diags...)
}

// Changed reports whether any rewrite was applied.
func (r *Report) Changed() bool {
	for _, n := range r.Applied {
		if n > 0 {
			return true
		}
	}
	return false
}

// Warnings counts diagnostics of warning severity.
func (r *Report) Warnings() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity >= SeverityWarning {
			n++
		}
	}
	return n
}

// Merge adds other's counts and diagnostics to r; Edits belong to one
// program and are not merged. A zero Report is ready to merge into.
func (r *Report) Merge(other *Report) {
	if r.Applied == nil {
		r.Applied, r.Skipped = make(map[string]int), make(map[string]int)
	}
	for k, n := range other.Applied {
		r.Applied[k] += n
	}
	for k, n := range other.Skipped {
		r.Skipped[k] += n
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Print writes one line per rule followed by the diagnostics, prefixed with
// name.
func (r *Report) Print(w io.Writer, name string) {
	keys := make([]string, 0, len(r.Applied)+len(r.Skipped))
	seen := make(map[string]bool)
	for _, m := range []map[string]int{r.Applied, r.Skipped} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s: %d applied, %d skipped\n", name, k, r.Applied[k], r.Skipped[k])
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "%s:%s\n", name, d)
	}
}
