package report

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style controls presentation of human-readable reports.
type Style struct {
	Color bool
	// Context is the number of unchanged lines around each diff hunk.
	Context int
}

type palette struct {
	enabled bool
	added   lipgloss.Style
	removed lipgloss.Style
	hunk    lipgloss.Style
	header  lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		return palette{}
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)
	return palette{
		enabled: true,
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
		hunk:    r.NewStyle().Foreground(lipgloss.Color("6")),
		header:  r.NewStyle().Bold(true),
	}
}

func (p palette) title(s string) string {
	if !p.enabled {
		return s
	}
	return p.header.Render(s)
}

// diff colors the lines of a unified diff.
func (p palette) diff(text string) string {
	if !p.enabled || text == "" {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "@@"):
			body = p.hunk.Render(body)
		case strings.HasPrefix(body, "+"):
			body = p.added.Render(body)
		case strings.HasPrefix(body, "-"):
			body = p.removed.Render(body)
		}
		b.WriteString(body)
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
