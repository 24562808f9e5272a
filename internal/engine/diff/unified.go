package diff

import (
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Hunks groups the changes of script into unified-diff hunks with the given
// number of context lines.
func Hunks(a, b []string, script EditScript, context int) []*godiff.Hunk {
	if context < 0 {
		context = 0
	}
	var hunks []*godiff.Hunk
	i := 0
	for i < len(script) {
		for i < len(script) && script[i].Op == Keep {
			i++
		}
		if i == len(script) {
			break
		}
		start := i - context
		if start < 0 {
			start = 0
		}
		end := i
		for end < len(script) {
			if script[end].Op != Keep {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].Op == Keep {
				run++
			}
			if run == len(script) || run-end > 2*context {
				end += min(context, run-end)
				break
			}
			end = run
		}
		hunks = append(hunks, buildHunk(a, b, script, start, end))
		i = end
	}
	return hunks
}

func buildHunk(a, b []string, script EditScript, start, end int) *godiff.Hunk {
	var body strings.Builder
	var origLines, newLines int32
	origStart, newStart := positionBefore(script, start)
	for _, e := range script[start:end] {
		switch e.Op {
		case Keep:
			body.WriteString(" " + a[e.A] + "\n")
			origLines++
			newLines++
		case Remove:
			body.WriteString("-" + a[e.A] + "\n")
			origLines++
		case Insert:
			body.WriteString("+" + b[e.B] + "\n")
			newLines++
		}
	}
	h := &godiff.Hunk{
		OrigStartLine: origStart,
		OrigLines:     origLines,
		NewStartLine:  newStart,
		NewLines:      newLines,
		Body:          []byte(body.String()),
	}
	if origLines > 0 {
		h.OrigStartLine++
	}
	if newLines > 0 {
		h.NewStartLine++
	}
	return h
}

// positionBefore counts the old and new lines consumed by script[:idx].
func positionBefore(script EditScript, idx int) (int32, int32) {
	var a, b int32
	for _, e := range script[:idx] {
		switch e.Op {
		case Keep:
			a++
			b++
		case Remove:
			a++
		case Insert:
			b++
		}
	}
	return a, b
}

// Unified renders the differences between a and b as unified-diff hunks without
// file headers. It returns an empty string when the inputs are equal.
func Unified(a, b []string) (string, error) {
	return UnifiedContext(a, b, DefaultContext)
}

// UnifiedContext is Unified with a configurable number of context lines.
func UnifiedContext(a, b []string, context int) (string, error) {
	script := Myers(a, b)
	if !script.HasChanges() {
		return "", nil
	}
	out, err := godiff.PrintHunks(Hunks(a, b, script, context))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
