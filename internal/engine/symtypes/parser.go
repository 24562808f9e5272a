package symtypes

import (
	"bufio"
	"fmt"
	"io"
	"ksymtypes/internal/core/errors"
	"strings"
)

// FileLinePrefix starts the per-file lines of a consolidated symtypes file.
const FileLinePrefix = "F#"

const maxLineSize = 64 << 20

// ParseOptions controls how references are resolved.
type ParseOptions struct {
	// OpaqueKinds lists record kinds whose definitions may be missing from a
	// table. Unresolved references of any other kind are an error.
	OpaqueKinds []Kind
}

// DefaultParseOptions tolerates missing enumerator constants, which genksyms
// only emits when their value is known.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{OpaqueKinds: []Kind{KindBasic}}
}

// Parse reads a single symtypes file into a TypeTable.
func Parse(path string, r io.Reader, opts ParseOptions) (*TypeTable, error) {
	lines, err := readLines(path, r)
	if err != nil {
		return nil, err
	}
	return parseLines(path, lines, opts)
}

// Read reads either a plain or a consolidated symtypes file. A plain file yields
// one table; a consolidated file yields one table per recorded source file.
func Read(path string, r io.Reader, opts ParseOptions) ([]*TypeTable, error) {
	lines, err := readLines(path, r)
	if err != nil {
		return nil, err
	}
	if IsConsolidated(lines) {
		return ParseConsolidated(path, lines, opts)
	}
	t, err := parseLines(path, lines, opts)
	if err != nil {
		return nil, err
	}
	return []*TypeTable{t}, nil
}

// IsConsolidated reports whether lines contain a consolidated file record.
func IsConsolidated(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, FileLinePrefix) {
			return true
		}
	}
	return false
}

func readLines(path string, r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to read symtypes data"), errors.CtxPath, path)
	}
	return lines, nil
}

func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || trimmed[0] == '#' || trimmed[0] == '/'
}

func parseLines(path string, lines []string, opts ParseOptions) (*TypeTable, error) {
	t := NewTypeTable(path)
	for i, line := range lines {
		if skipLine(line) {
			continue
		}
		rec, err := parseRecord(path, i+1, line)
		if err != nil {
			return nil, err
		}
		if !t.Add(rec) {
			return nil, newParseError(path, i+1, ReasonDuplicateDefinition, rec.Key.String(), "Duplicate record '%s'", rec.Key)
		}
	}
	if err := t.Validate(opts.OpaqueKinds); err != nil {
		return nil, err
	}
	return t, nil
}

func parseRecord(path string, lineNo int, line string) (*TypeRecord, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil, newParseError(path, lineNo, ReasonMalformedLine, "", "Expected a record name")
	}
	key, ok := ParseKey(words[0])
	if !ok {
		return nil, newParseError(path, lineNo, ReasonMalformedLine, words[0], "Invalid record name '%s'", words[0])
	}
	sig, err := parseTokens(words[1:])
	if err != nil {
		return nil, newParseError(path, lineNo, ReasonMalformedLine, key.String(), "%v", err)
	}
	return &TypeRecord{Key: key, Signature: sig, Line: lineNo}, nil
}

func parseTokens(words []string) ([]Token, error) {
	tokens := make([]Token, len(words))
	for i, w := range words {
		if len(w) >= 2 && w[1] == '#' {
			k, ok := ParseKey(w)
			if !ok || k.IsExport() {
				return nil, fmt.Errorf("Invalid type reference '%s'", w)
			}
			tokens[i] = Ref(k)
			continue
		}
		tokens[i] = Atom(w)
	}
	return tokens, nil
}
