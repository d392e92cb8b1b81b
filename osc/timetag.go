package osc

import (
	"encoding/binary"
	"time"
)

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// Timetag is a 64-bit OSC time tag: the top 32 bits are seconds since the
// NTP epoch, the bottom 32 bits are a fraction of a second. The special
// value 1 means "immediately".
type Timetag uint64

// Immediately is the OSC time tag meaning "execute as soon as possible".
const Immediately Timetag = 1

// NewTimetag builds a Timetag from a wall-clock time.
func NewTimetag(t time.Time) Timetag {
	secs := uint64(t.Unix()+ntpEpochOffset) << 32
	frac := uint64(t.Nanosecond()) * (1 << 32) / 1e9
	return Timetag(secs | frac)
}

// NewTimetagFromTimetag wraps a raw 64-bit NTP value read off the wire.
func NewTimetagFromTimetag(v uint64) Timetag {
	return Timetag(v)
}

// Time converts the Timetag back to a wall-clock time.
func (tt Timetag) Time() time.Time {
	secs := int64(uint64(tt)>>32) - ntpEpochOffset
	frac := uint32(tt)
	nsec := int64(float64(frac) / (1 << 32) * 1e9)
	return time.Unix(secs, nsec)
}

// ToByteArray renders the Timetag as 8 big-endian bytes, ready to append to
// an encode buffer.
func (tt Timetag) ToByteArray() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(tt))
	return b[:]
}

// ExpiresIn reports how long until the Timetag's deadline, or 0 if it is
// Immediately or already in the past. This is a non-realtime helper used
// only by the scheduled-bundle-dispatch path (see DispatchScheduled); the
// core encode/decode/dispatch path never calls it.
func (tt Timetag) ExpiresIn() time.Duration {
	if tt == Immediately {
		return 0
	}
	d := time.Until(tt.Time())
	if d < 0 {
		return 0
	}
	return d
}
