package ringlink

import "github.com/kward/go-osc/osc"

// Link is a ThreadLink: a pair of independent Rings, Up and Down, carrying
// whole OSC messages in opposite directions between a non-realtime control
// thread and a realtime audio thread. Exactly one goroutine writes a given
// Ring and exactly one reads it; there is no ordering guarantee between Up
// and Down, only within each.
type Link struct {
	Up   *Ring
	Down *Ring

	upScratch   []byte
	downScratch []byte
}

// NewLink builds a Link with the given per-ring byte capacity and the
// maximum size in bytes any single encoded message may reach. maxMessage
// sizes the scratch buffers Write uses to encode into before publishing, so
// it must be large enough for the largest address/tags/args combination the
// caller intends to send; encoding failures past that size are reported as
// a dropped write, the same as a full ring.
func NewLink(ringCapacity, maxMessage int) *Link {
	return &Link{
		Up:          NewRing(ringCapacity),
		Down:        NewRing(ringCapacity),
		upScratch:   make([]byte, maxMessage),
		downScratch: make([]byte, maxMessage),
	}
}

// WriteUp encodes address and args and publishes the result to Up. It
// returns false if the message doesn't fit in the configured max message
// size, or if Up has no room; either way the message is dropped, never
// partially written.
func (l *Link) WriteUp(address string, args ...osc.Arg) bool {
	return write(l.Up, l.upScratch, address, args)
}

// WriteDown encodes address and args and publishes the result to Down,
// under the same contract as WriteUp.
func (l *Link) WriteDown(address string, args ...osc.Arg) bool {
	return write(l.Down, l.downScratch, address, args)
}

func write(r *Ring, scratch []byte, address string, args []osc.Arg) bool {
	n, ok := osc.Message(scratch, address, args...)
	if !ok {
		return false
	}
	return r.Write(scratch[:n])
}

// ReadUp returns the next message published to Up, or (nil, false) if none
// is pending. The returned slice is valid only until the next ReadUp call.
func (l *Link) ReadUp() ([]byte, bool) { return l.Up.Read() }

// ReadDown returns the next message published to Down, or (nil, false) if
// none is pending. The returned slice is valid only until the next ReadDown
// call.
func (l *Link) ReadDown() ([]byte, bool) { return l.Down.Read() }

// HasNextUp reports whether ReadUp would return a message right now.
func (l *Link) HasNextUp() bool { return l.Up.HasNext() }

// HasNextDown reports whether ReadDown would return a message right now.
func (l *Link) HasNextDown() bool { return l.Down.HasNext() }

// WriteSizeUp returns the number of messages written to Up and not yet
// read — "pending the other direction" from the perspective of whichever
// side calls WriteDown, mirroring spec's writeSize().
func (l *Link) WriteSizeUp() int { return l.Up.PendingCount() }

// WriteSizeDown returns the number of messages written to Down and not yet
// read.
func (l *Link) WriteSizeDown() int { return l.Down.PendingCount() }

// DroppedUp returns the number of WriteUp calls since construction that
// were dropped for lack of space.
func (l *Link) DroppedUp() uint64 { return l.Up.DroppedCount() }

// DroppedDown returns the number of WriteDown calls since construction that
// were dropped for lack of space.
func (l *Link) DroppedDown() uint64 { return l.Down.DroppedCount() }

// DispatchUp drains every message currently pending on Up against table,
// invoking Dispatch for each in FIFO order. It's a convenience for the
// realtime reader side of Up (e.g. the audio thread draining control-thread
// writes); it performs no allocation or blocking beyond what Dispatch and
// the handlers it calls do.
func DispatchUp(l *Link, table osc.PortsTable, ctx any) int {
	return drain(l.Up, table, ctx)
}

// DispatchDown drains every message currently pending on Down against
// table, the mirror of DispatchUp for the control-thread reader side.
func DispatchDown(l *Link, table osc.PortsTable, ctx any) int {
	return drain(l.Down, table, ctx)
}

func drain(r *Ring, table osc.PortsTable, ctx any) int {
	n := 0
	for {
		msg, ok := r.Read()
		if !ok {
			return n
		}
		if osc.Dispatch(table, msg, ctx) {
			n++
		}
	}
}
