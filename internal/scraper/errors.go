package scraper

import (
	"errors"
	"fmt"
)

// ParseError signals that a structural assumption about a source was
// violated: the whole fetch for that source is aborted because later
// records may have been built on a wrong anchor. Field-level validation
// problems are never a ParseError; those are logged and skipped.
type ParseError struct {
	Source   string
	Message  string
	Fragment string
}

// NewParseError builds a structural parse failure for a source. Pass the
// offending raw substring as fragment when one is available.
func NewParseError(source, message, fragment string) *ParseError {
	return &ParseError{Source: source, Message: message, Fragment: fragment}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s (%s)", e.Source, e.Message, e.Fragment)
}

// IsParseError reports whether err wraps a structural parse failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
