package story

import (
	"fmt"
	"strconv"
	"strings"
)

// handlePrefix is the wire prefix of a choice handle ("choice-3").
const handlePrefix = "choice-"

// Handle identifies the outgoing slot of a scene an edge leaves from.
// Non-negative values are choice indices; [NoHandle] marks an edge that is
// not attached to any choice.
//
// The string form "choice-<index>" is only used on the wire (JSON project
// files and the HTTP API); inside the model handles are plain integers.
type Handle int

// NoHandle is the handle of an edge without a choice slot.
const NoHandle Handle = -1

// ChoiceHandle returns the handle of the choice at index i.
func ChoiceHandle(i int) Handle {
	if i < 0 {
		return NoHandle
	}
	return Handle(i)
}

// IsChoice reports whether h refers to a choice slot.
func (h Handle) IsChoice() bool { return h >= 0 }

// Index returns the choice index of h, or -1 for [NoHandle].
func (h Handle) Index() int {
	if h < 0 {
		return -1
	}
	return int(h)
}

// String returns the wire form of h: "choice-<index>", or "" for [NoHandle].
func (h Handle) String() string {
	if h < 0 {
		return ""
	}
	return handlePrefix + strconv.Itoa(int(h))
}

// ParseHandle parses the wire form of a handle.
// The empty string parses as [NoHandle]. Anything that is neither empty nor
// "choice-<non-negative integer>" is rejected.
func ParseHandle(s string) (Handle, error) {
	if s == "" {
		return NoHandle, nil
	}
	rest, ok := strings.CutPrefix(s, handlePrefix)
	if !ok {
		return NoHandle, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || rest != strconv.Itoa(n) {
		return NoHandle, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
	return Handle(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
