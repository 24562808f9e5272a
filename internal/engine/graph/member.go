package graph

import "ksymtypes/internal/engine/symtypes"

var nonMemberWords = map[string]bool{
	"struct": true, "union": true, "enum": true, "typedef": true,
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "const": true, "volatile": true,
	"restrict": true, "__restrict": true, "static": true, "inline": true,
	"extern": true, "register": true,
}

// MemberAt names the struct member, parameter or enumerator whose declaration
// contains the token at idx. It returns "" when no name can be determined, for
// example for unnamed parameters.
func MemberAt(tokens []symtypes.Token, idx int) string {
	if len(tokens) == 0 {
		return ""
	}
	if idx >= len(tokens) {
		idx = len(tokens) - 1
	}
	if idx < 0 {
		return ""
	}

	start := 0
	depth := 0
back:
	for i := idx - 1; i >= 0; i-- {
		switch tokens[i].String() {
		case "}", ")", "]":
			depth++
		case "{", "(", "[":
			if depth == 0 {
				start = i + 1
				break back
			}
			depth--
		case ";", ",":
			if depth == 0 {
				start = i + 1
				break back
			}
		}
	}

	end := len(tokens)
	depth = 0
forward:
	for i := idx; i < len(tokens); i++ {
		switch tokens[i].String() {
		case "{", "(", "[":
			depth++
		case "}", ")", "]":
			if depth == 0 {
				end = i
				break forward
			}
			depth--
		case ";", ",":
			if depth == 0 {
				end = i
				break forward
			}
		}
	}
	if start >= end {
		return ""
	}
	return memberName(tokens[start:end])
}

func memberName(decl []symtypes.Token) string {
	name := ""
	depth := 0
	for _, tok := range decl {
		s := tok.String()
		switch s {
		case "{", "(", "[":
			depth++
			continue
		case "}", ")", "]":
			depth--
			continue
		}
		if depth == 0 && tok.Ref == nil && isIdentifier(s) && !nonMemberWords[s] {
			name = s
		}
	}
	if name != "" {
		return name
	}
	// Function pointers: "void ( * name ) ( ... )".
	for i := 0; i+2 < len(decl); i++ {
		if decl[i].String() == "(" && decl[i+1].String() == "*" && isIdentifier(decl[i+2].String()) {
			return decl[i+2].String()
		}
	}
	return ""
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
