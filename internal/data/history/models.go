package history

import "time"

const SchemaVersion = 1

// Run is one recorded comparison between two corpora.
type Run struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	OldPath   string    `json:"old_path"`
	NewPath   string    `json:"new_path"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Changed   int       `json:"changed"`
	Symbols   []Symbol  `json:"symbols,omitempty"`
}

// Change classifies a recorded export.
type Change string

const (
	ChangeAdded   Change = "added"
	ChangeRemoved Change = "removed"
	ChangeChanged Change = "changed"
)

type Symbol struct {
	Name   string `json:"name"`
	Change Change `json:"change"`
	Path   string `json:"path,omitempty"`
}

// Total is the number of differing exports in the run.
func (r Run) Total() int {
	return r.Added + r.Removed + r.Changed
}
