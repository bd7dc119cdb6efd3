// ABOUTME: Error taxonomy for sniffing, transcoding, loading, and resampling
// ABOUTME: Sentinel errors plus ParseError wrapping legacy codec parse failures

package imgfit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for a nil stream, nil image, or bad resample spec.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrParseFailure matches every *ParseError via errors.Is.
	ErrParseFailure = errors.New("failure to parse image")
)

// ParseError reports that the legacy codec could not parse a footer-tagged stream.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failure to parse image: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParseFailure) true for any *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
