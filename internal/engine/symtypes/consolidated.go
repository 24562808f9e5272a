package symtypes

import (
	"strconv"
	"strings"
)

// VariantName returns the record name used in consolidated output: the key,
// suffixed with "@index" when the type has more than one variant.
func VariantName(k Key, index int, multi bool) string {
	if !multi {
		return k.String()
	}
	return k.String() + "@" + strconv.Itoa(index)
}

// splitVariant splits "s#foo@1" into "s#foo" and "1". Names without a numeric
// suffix are returned unchanged with an empty label.
func splitVariant(name string) (string, string) {
	at := strings.LastIndexByte(name, '@')
	if at <= 0 || at == len(name)-1 {
		return name, ""
	}
	for _, c := range name[at+1:] {
		if c < '0' || c > '9' {
			return name, ""
		}
	}
	return name[:at], name[at+1:]
}

type fileLine struct {
	line  int
	name  string
	words []string
}

// ParseConsolidated parses the lines of a consolidated symtypes file into one
// table per "F#" record. Types listed by a file record are taken in the named
// variant; types a file only references are taken implicitly, which requires
// them to have exactly one variant in the corpus.
func ParseConsolidated(path string, lines []string, opts ParseOptions) ([]*TypeTable, error) {
	variants := make(map[Key]map[string]*TypeRecord)
	var files []fileLine
	seenFiles := make(map[string]bool)

	for i, line := range lines {
		lineNo := i + 1
		if skipLine(line) {
			continue
		}
		words := strings.Fields(line)
		if strings.HasPrefix(words[0], FileLinePrefix) {
			name := strings.TrimPrefix(words[0], FileLinePrefix)
			if name == "" {
				return nil, newParseError(path, lineNo, ReasonMalformedLine, "", "Expected a file name")
			}
			if seenFiles[name] {
				return nil, newParseError(path, lineNo, ReasonDuplicateDefinition, words[0], "Duplicate record '%s'", words[0])
			}
			seenFiles[name] = true
			files = append(files, fileLine{line: lineNo, name: name, words: words[1:]})
			continue
		}

		base, label := splitVariant(words[0])
		key, ok := ParseKey(base)
		if !ok {
			return nil, newParseError(path, lineNo, ReasonMalformedLine, words[0], "Invalid record name '%s'", words[0])
		}
		sig, err := parseTokens(words[1:])
		if err != nil {
			return nil, newParseError(path, lineNo, ReasonMalformedLine, words[0], "%v", err)
		}
		byLabel := variants[key]
		if byLabel == nil {
			byLabel = make(map[string]*TypeRecord)
			variants[key] = byLabel
		}
		if _, dup := byLabel[label]; dup {
			return nil, newParseError(path, lineNo, ReasonDuplicateDefinition, words[0], "Duplicate record '%s'", words[0])
		}
		byLabel[label] = &TypeRecord{Key: key, Signature: sig, Line: lineNo}
	}

	tables := make([]*TypeTable, 0, len(files))
	for _, f := range files {
		t, err := buildFileTable(path, f, variants, opts)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func buildFileTable(path string, f fileLine, variants map[Key]map[string]*TypeRecord, opts ParseOptions) (*TypeTable, error) {
	t := NewTypeTable(f.name)
	var stack []*TypeRecord
	for _, w := range f.words {
		base, label := splitVariant(w)
		key, ok := ParseKey(base)
		if !ok {
			return nil, newParseError(path, f.line, ReasonMalformedLine, w, "Invalid type name '%s'", w)
		}
		rec, ok := variants[key][label]
		if !ok {
			return nil, newParseError(path, f.line, ReasonUnknownVariant, w, "Type '%s' is not known", w)
		}
		if !t.Add(rec) {
			return nil, newParseError(path, f.line, ReasonDuplicateDefinition, w, "Duplicate type '%s' in file '%s'", key, f.name)
		}
		stack = append(stack, rec)
	}

	for len(stack) > 0 {
		rec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ref := range rec.References() {
			if _, ok := t.Lookup(ref); ok {
				continue
			}
			byLabel := variants[ref]
			switch len(byLabel) {
			case 0:
				// Resolved or rejected by Validate below.
			case 1:
				for _, v := range byLabel {
					t.Add(v)
					stack = append(stack, v)
				}
			default:
				return nil, newParseError(path, f.line, ReasonUnknownVariant, ref.String(),
					"Type '%s' is implicitly referenced by file '%s' but has multiple variants in the corpus", ref, f.name)
			}
		}
	}

	if err := t.Validate(opts.OpaqueKinds); err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
			pe.Detail += " in file '" + f.name + "'"
		}
		return nil, err
	}
	return t, nil
}
