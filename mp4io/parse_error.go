package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTruncated reports that fewer bytes remained than a box header or
// payload field declared.
var ErrTruncated = errors.New("truncated input")

// ErrOverrun reports a child box whose declared size is inconsistent with
// the enclosing scope.
var ErrOverrun = errors.New("box size exceeds parent scope")

// ErrInvalid reports a box whose payload violates its own layout rules
// (bad field width, unsupported version) without over- or under-running
// the scope.
var ErrInvalid = errors.New("invalid box data")

// ParseError records the field name and absolute offset at each level of
// an aborted parse. The chain bottoms out at one of the sentinel errors
// above so callers can classify the failure with errors.Is.
type ParseError struct {
	Debug  string
	Offset int
	prev   error
}

func (p *ParseError) Error() string {
	s := []string{}
	var err error = p
	for err != nil {
		pe, ok := err.(*ParseError) // nolint: errorlint
		if !ok {
			s = append(s, err.Error())
			break
		}
		s = append(s, fmt.Sprintf("%s:%d", pe.Debug, pe.Offset))
		err = pe.prev
	}
	return "mp4io: parse error: " + strings.Join(s, ",")
}

func (p *ParseError) Unwrap() error {
	return p.prev
}

func parseErr(debug string, offset int, prev error) error {
	if prev == nil {
		prev = ErrTruncated
	}
	return &ParseError{Debug: debug, Offset: offset, prev: prev}
}

// degradable reports whether a failed child parse may fall back to opaque
// preservation. Scope and truncation failures never degrade: a declared
// length that cannot be satisfied is always fatal.
func degradable(err error) bool {
	return err != nil && !errors.Is(err, ErrTruncated) && !errors.Is(err, ErrOverrun)
}
