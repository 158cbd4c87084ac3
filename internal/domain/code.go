package domain

import (
	"fmt"
	"strings"
)

// ErrMalformedCode reports a classification code that does not follow the
// dotted hierarchical format. It is informational: malformed codes are
// stored as-is and flagged for review, never rejected, so a document stays
// editable with provisional codes.
var ErrMalformedCode = fmt.Errorf("malformed classification code")

// Code is a classification code pair: a primary STABU-style dotted
// hierarchical code and an optional SFB element code, independent of each
// other.
type Code struct {
	Primary string
	SFB     string
}

// IsZero reports whether neither code is set.
func (c Code) IsZero() bool {
	return c.Primary == "" && c.SFB == ""
}

// ValidatePrimary checks the STABU dotted format: one or more non-empty
// digit segments separated by single dots, e.g. "01" or "01.02.03".
// An empty code is valid (codes are optional).
func ValidatePrimary(code string) error {
	if code == "" {
		return nil
	}
	for _, seg := range strings.Split(code, ".") {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrMalformedCode, code)
		}
		for _, r := range seg {
			if r < '0' || r > '9' {
				return fmt.Errorf("%w: non-digit segment %q in %q", ErrMalformedCode, seg, code)
			}
		}
	}
	return nil
}

// IsStrictPrefix reports whether code a is a strict dotted-segment prefix
// of code b: "01" is a strict prefix of "01.02" but not of "011" or "01".
func IsStrictPrefix(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	return strings.HasPrefix(b, a+".")
}

// CodeDepth returns the number of dotted segments, 0 for an empty code.
func CodeDepth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, ".") + 1
}
