package symtypes

import (
	"fmt"
	"ksymtypes/internal/core/errors"
)

// Reason classifies a ParseError.
type Reason string

const (
	ReasonMalformedLine       Reason = "MalformedLine"
	ReasonDuplicateDefinition Reason = "DuplicateDefinition"
	ReasonUnresolvedReference Reason = "UnresolvedReference"
	ReasonUnknownVariant      Reason = "UnknownVariant"
)

// ParseError reports a problem in a symtypes input, pointing at the offending line.
type ParseError struct {
	Path   string
	Line   int
	Reason Reason
	// Name is the record or reference the error is about, if any.
	Name   string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

// Code maps the reason onto the shared error taxonomy.
func (e *ParseError) Code() errors.ErrorCode {
	switch e.Reason {
	case ReasonMalformedLine:
		return errors.CodeMalformedLine
	case ReasonDuplicateDefinition:
		return errors.CodeDuplicateDefinition
	case ReasonUnresolvedReference:
		return errors.CodeUnresolvedReference
	case ReasonUnknownVariant:
		return errors.CodeUnknownVariant
	}
	return errors.CodeInternal
}

func newParseError(path string, line int, reason Reason, name, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Path:   path,
		Line:   line,
		Reason: reason,
		Name:   name,
		Detail: fmt.Sprintf(format, args...),
	}
}

var _ errors.Coded = (*ParseError)(nil)
