package symtypes

import (
	"bufio"
	"io"
)

// Write emits the table in the plain symtypes format, one record per line in
// source order. Parsing the output yields an equal table.
func Write(w io.Writer, t *TypeTable) error {
	bw := bufio.NewWriter(w)
	for _, rec := range t.Records() {
		if err := WriteRecord(bw, rec.Key.String(), rec.Signature); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteRecord writes a single "name token..." line.
func WriteRecord(w io.StringWriter, name string, sig []Token) error {
	if _, err := w.WriteString(name); err != nil {
		return err
	}
	for _, tok := range sig {
		if _, err := w.WriteString(" "); err != nil {
			return err
		}
		if _, err := w.WriteString(tok.String()); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}
