package diff

import "strings"

// PrettyFormat lays out the words of a type signature as C-like source lines:
// "{" and "(" end a line and indent the following ones, "}" and ")" dedent and
// start a new line, and ";" and "," end a line. Indentation uses tabs.
func PrettyFormat(words []string) []string {
	var lines []string
	var line strings.Builder
	indent := 0

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
	}

	for _, w := range words {
		if w == "}" || w == ")" {
			if line.Len() > 0 {
				flush()
			}
			if indent > 0 {
				indent--
			}
		}

		first := line.Len() == 0
		if first {
			line.WriteString(strings.Repeat("\t", indent))
		}

		switch w {
		case "{", "(":
			if !first {
				line.WriteByte(' ')
			}
			line.WriteString(w)
			flush()
			indent++
		case "}", ")":
			line.WriteString(w)
		case ";", ",":
			line.WriteString(w)
			flush()
		default:
			if !first {
				line.WriteByte(' ')
			}
			line.WriteString(w)
		}
	}
	if line.Len() > 0 {
		flush()
	}
	return lines
}
