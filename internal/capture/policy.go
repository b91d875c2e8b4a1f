package capture

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides what a failed frame does to the session.
type ErrorPolicy int

const (
	// PolicySkip logs the failure and moves on to the next frame.
	PolicySkip ErrorPolicy = iota
	// PolicyFatal stops the session and returns the error.
	PolicyFatal
)

func (p ErrorPolicy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy accepts "skip" or "fatal". The empty string is skip.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "fatal":
		return PolicyFatal, nil
	default:
		return PolicySkip, fmt.Errorf("unknown error policy %q (want skip or fatal)", s)
	}
}
