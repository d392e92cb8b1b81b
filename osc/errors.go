package osc

import "errors"

// Sentinel errors returned by the non-realtime accessors and the standalone
// packet reader. The hot encode/dispatch path never returns these; it
// signals failure through a plain bool or a zero length, per the
// realtime-safety contract described in the package doc.
var (
	ErrAddressInvalid      = errors.New("osc: address must start with '/'")
	ErrBufferTooSmall      = errors.New("osc: buffer too small")
	ErrTypeTagStartMissing = errors.New("osc: type tag string must start with ','")
	ErrStringUnterminated  = errors.New("osc: string missing 0 terminator")
	ErrArgumentTooShort    = errors.New("osc: content too short for argument")
	ErrArgumentIndex       = errors.New("osc: argument index out of range")
	ErrNotABundle          = errors.New("osc: buffer is not a bundle")
	ErrInvalidBundle       = errors.New("osc: malformed bundle")
	ErrUnknownPacket       = errors.New("osc: buffer is neither message nor bundle")

	// ErrPortPatternEmpty and ErrPortInvalid are returned by
	// ValidatePortsTable, which checks a Ports table's construction-time
	// invariants (spec.md §3's "a Port is either a leaf, with Handler set,
	// or a subtree, with Subtree set — never both") before the table is
	// ever handed to Dispatch.
	ErrPortPatternEmpty = errors.New("osc: port pattern must not be empty")
	ErrPortInvalid      = errors.New("osc: port must have exactly one of Handler or Subtree set")
)

// UnknownTypeTagError occurs when an unrecognized type tag character is
// encountered while walking a type tag string. It carries the offending
// tag, which a plain sentinel couldn't, so it's what ValidateMessage and
// MessageChecked return for a bad tag rather than a generic "unsupported
// tag" sentinel.
type UnknownTypeTagError struct {
	Tag byte
}

func (e UnknownTypeTagError) Error() string {
	return "osc: unknown type tag '" + string(rune(e.Tag)) + "'"
}
