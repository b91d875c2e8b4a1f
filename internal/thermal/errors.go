package thermal

import (
	"errors"
	"fmt"
)

// Error codes for malformed frames and grids.
const (
	ErrCodeGeometry   = "GEOMETRY"
	ErrCodeDecode     = "DECODE"
	ErrCodeConversion = "CONVERSION"
	ErrCodeEmptyGrid  = "EMPTY_GRID"
	ErrCodeNaN        = "NAN"
)

// Sentinels matched by errors.Is against any FrameError with the same code.
var (
	ErrGeometry   = &FrameError{Code: ErrCodeGeometry}
	ErrDecode     = &FrameError{Code: ErrCodeDecode}
	ErrConversion = &FrameError{Code: ErrCodeConversion}
	ErrEmptyGrid  = &FrameError{Code: ErrCodeEmptyGrid}
	ErrNaN        = &FrameError{Code: ErrCodeNaN}
)

// FrameError reports a frame or grid that the pipeline cannot process.
type FrameError struct {
	Code    string
	Message string
	Cause   error
}

func (e *FrameError) Error() string {
	switch {
	case e.Message == "":
		return e.Code
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code.
func (e *FrameError) Is(target error) bool {
	var fe *FrameError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Code == e.Code
}

func newFrameError(code, format string, args ...any) *FrameError {
	return &FrameError{Code: code, Message: fmt.Sprintf(format, args...)}
}
