package pipeline

import (
	"time"

	"github.com/saeed-golshan/corebuild/internal/target"
)

// State tracks a matrix row through its lifecycle.
type State int

const (
	Pending State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the terminal record of one matrix row.
type Result struct {
	Row     target.Row
	State   State
	Elapsed time.Duration

	// ArtifactPath is set when State is Succeeded.
	ArtifactPath string

	// Err is set when State is Failed.
	Err error
}

// FailedOf filters results down to the failed rows.
func FailedOf(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.State == Failed {
			failed = append(failed, r)
		}
	}
	return failed
}
