package osc

import (
	"encoding/binary"
	"time"
)

// bundleTag is the literal 8-byte (padded) header every OSC bundle starts
// with.
const bundleTag = "#bundle"

// BundleP reports whether buf is framed as an OSC bundle, i.e. starts with
// "#bundle\x00". It performs no further validation.
func BundleP(buf []byte) bool {
	return len(buf) >= padTo4Str(len(bundleTag)) &&
		string(buf[:len(bundleTag)]) == bundleTag &&
		buf[len(bundleTag)] == 0
}

// BundleTimetag reads the 64-bit NTP time tag immediately following a
// bundle's header.
func BundleTimetag(buf []byte) (Timetag, bool) {
	if !BundleP(buf) {
		return 0, false
	}
	off := padTo4Str(len(bundleTag))
	if len(buf) < off+8 {
		return 0, false
	}
	return Timetag(binary.BigEndian.Uint64(buf[off:])), true
}

// BundleTimetagChecked is BundleTimetag's checked counterpart, for
// non-realtime callers (the pretty-printer collaborator, diagnostics) that
// want to know why a buffer yielded no time tag rather than a bare false:
// ErrNotABundle if buf isn't framed as a bundle at all, ErrInvalidBundle if
// the framing is present but truncated.
func BundleTimetagChecked(buf []byte) (Timetag, error) {
	if !BundleP(buf) {
		return 0, ErrNotABundle
	}
	tt, ok := BundleTimetag(buf)
	if !ok {
		return 0, ErrInvalidBundle
	}
	return tt, nil
}

// BundleElements iterates the (size, element) pairs making up a bundle's
// contents, calling visit for each element's bytes in wire order. visit
// returning false stops the iteration early. BundleElements never copies an
// element; every slice handed to visit is a window into buf.
func BundleElements(buf []byte, visit func(element []byte) bool) bool {
	if !BundleP(buf) {
		return false
	}
	pos := padTo4Str(len(bundleTag)) + 8
	for pos < len(buf) {
		if pos+4 > len(buf) {
			return false
		}
		size := int(binary.BigEndian.Uint32(buf[pos:]))
		pos += 4
		if size < 0 || pos+size > len(buf) {
			return false
		}
		if !visit(buf[pos : pos+size]) {
			return true
		}
		pos += size
	}
	return true
}

// Bundle encodes "#bundle", a time tag, and the given pre-encoded element
// buffers into buf. It returns the number of bytes written and true on
// success, or (0, false) if buf is too small. Bundle does not build nested
// bundles itself; pass already-framed bundle bytes as an element to nest
// one.
func Bundle(buf []byte, tt Timetag, elements ...[]byte) (int, bool) {
	headerTotal := padTo4Str(len(bundleTag))
	total := headerTotal + 8
	for _, e := range elements {
		total += 4 + len(e)
	}
	if total > len(buf) {
		return 0, false
	}

	pos := 0
	copy(buf[pos:], bundleTag)
	zero(buf[pos+len(bundleTag) : pos+headerTotal])
	pos += headerTotal

	binary.BigEndian.PutUint64(buf[pos:], uint64(tt))
	pos += 8

	for _, e := range elements {
		binary.BigEndian.PutUint32(buf[pos:], uint32(len(e)))
		pos += 4
		copy(buf[pos:], e)
		pos += len(e)
	}
	return pos, true
}

// DispatchScheduled dispatches every message inside a bundle against table,
// deferred with after until the bundle's own time tag expires, recursing
// into any nested bundles the same way. Unlike Dispatch, this helper starts
// a timer and is therefore not realtime-safe; it exists for non-audio-thread
// callers that want timetag-respecting delivery. The audio-thread path is
// Dispatch, which routes a bundle's elements individually and immediately,
// ignoring the bundle's time tag.
func DispatchScheduled(table PortsTable, bundleBuf []byte, ctx any, after func(d time.Duration, fn func())) bool {
	tt, ok := BundleTimetag(bundleBuf)
	if !ok {
		return false
	}
	dispatched := false
	after(tt.ExpiresIn(), func() {
		BundleElements(bundleBuf, func(element []byte) bool {
			if BundleP(element) {
				dispatched = DispatchScheduled(table, element, ctx, after) || dispatched
			} else {
				dispatched = Dispatch(table, element, ctx) || dispatched
			}
			return true
		})
	})
	return dispatched
}
