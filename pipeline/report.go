package pipeline

import (
	"fmt"
	"strings"

	"github.com/poiesic/docflow/core"
)

// Report is the consolidated failure report for a run: one line per
// (step, document, error) tuple, in collection order. It is returned as the
// run's error so a non-empty report yields a non-zero exit status.
type Report struct {
	Failures []core.Failure
}

func (r *Report) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d step failure(s):", len(r.Failures))
	for _, f := range r.Failures {
		b.WriteString("\n")
		b.WriteString(f.String())
	}
	return b.String()
}
