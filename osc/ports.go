package osc

import (
	"fmt"
	"strings"
)

// Handler is anything that can handle a dispatched OSC message. Every
// handler implementation receives the full, original message buffer (never
// a re-addressed copy) and the opaque context threaded through from the
// outermost Dispatch call.
type Handler interface {
	HandleMessage(msg []byte, ctx any)
}

// HandlerFunc adapts a plain function to the Handler interface, the same
// way the teacher's HandlerFunc adapts a func(*Message) to its Handler
// interface.
type HandlerFunc func(msg []byte, ctx any)

// HandleMessage calls f. Implements Handler.
func (f HandlerFunc) HandleMessage(msg []byte, ctx any) { f(msg, ctx) }

// Recurse narrows a parent context into the context a nested Ports table's
// handlers should see. A nil Recurse leaves the context unchanged across
// the descent.
type Recurse func(ctx any) any

// Port is a single declared endpoint in a Ports table. Pattern carries the
// OSC-1.0 address pattern this port matches, optionally followed by
// ":<type-constraint>" (see ParsePattern). A Port is either a leaf, with
// Handler set, or a subtree, with Subtree set — never both.
//
// Ports tables are meant to be built as package-scope slice literals and
// never mutated afterwards; nothing in this package copies or mutates a
// Port or a PortsTable.
type Port struct {
	Pattern string
	Meta    string
	Handler Handler
	Subtree *PortsTable
	Recurse Recurse
}

// PortsTable is a statically sized, ordered collection of Ports. Order
// matters: Dispatch tries ports in declaration order and stops at the
// first leaf whose pattern and type constraint match and whose Handler is
// set, or at the first subtree it descends into; no later port is tried
// after a descent, even if nothing in the subtree matched.
type PortsTable []Port

// ParsePattern splits a Port's Pattern field into the address pattern and
// the type constraint, per the "<address-or-pattern>[:<type-constraint>]"
// declaration syntax. An absent ':' yields an empty constraint, which
// matches any argument types.
//
// Open question decision: a non-empty constraint matches a message if it
// is a literal prefix of the message's type tag string; tags trailing the
// constraint are accepted, not required to be absent. A "if" constraint
// therefore matches both a ",if" and a ",ifs" message — see
// TestDispatchTypeConstraintAllowsTrailingTags.
func ParsePattern(spec string) (pattern, types string) {
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

// Dispatch walks table looking for a port whose pattern matches msg's
// address, and invokes it. It returns true if a port was invoked, false if
// the address matched nothing. Dispatch is pure and stateless beyond the
// immutable table and msg it's given; a single call is re-entrant only if
// every handler it invokes is re-entrant.
//
// Dispatch matches addresses as []byte windows into msg the whole way
// down, never converting to a string: a []byte-to-string conversion
// allocates and copies, which the audio thread must never do (spec.md
// §1/§5; Testable Property #7).
//
// If msg is a bundle, Dispatch routes each of its elements individually and
// immediately, ignoring the bundle's own time tag; see DispatchScheduled for
// timetag-respecting delivery off the audio thread.
func Dispatch(table PortsTable, msg []byte, ctx any) bool {
	if BundleP(msg) {
		dispatched := false
		BundleElements(msg, func(element []byte) bool {
			dispatched = Dispatch(table, element, ctx) || dispatched
			return true
		})
		return dispatched
	}

	addrBytes, ok := AddressBytes(msg)
	if !ok {
		return false
	}
	return dispatchAddr(table, msg, addrBytes, ctx)
}

// Dispatch is a method form of the free Dispatch function, mirroring the
// teacher's Dispatcher.Dispatch(packet) call shape.
func (t PortsTable) Dispatch(msg []byte, ctx any) bool {
	return Dispatch(t, msg, ctx)
}

// dispatchAddr matches the logical address addr (always starting with '/')
// against table; msg is the original, unmodified message buffer, always
// passed through to handlers untouched. addr is a []byte window, either
// straight into msg (the outermost call) or into a parent call's addr (a
// subtree descent) — never a copy.
func dispatchAddr(table PortsTable, msg []byte, addr []byte, ctx any) bool {
	for _, p := range table {
		pattern, types := ParsePattern(p.Pattern)

		if p.Subtree != nil {
			seg, rest, ok := splitFirstSegment(addr)
			if !ok || !Match(strings.TrimSuffix(pattern, "/"), seg) {
				continue
			}
			if len(rest) <= 1 {
				// No path left beyond the matched prefix: spec requires
				// "the address contains more path beyond the prefix" for
				// a subtree descent to apply.
				continue
			}
			childCtx := ctx
			if p.Recurse != nil {
				childCtx = p.Recurse(ctx)
			}
			return dispatchAddr(*p.Subtree, msg, rest, childCtx)
		}

		if !Match(pattern, addr[1:]) {
			continue
		}
		if types != "" {
			tags, ok := TagBytes(msg)
			if !ok || !tagsHavePrefix(tags, types) {
				continue
			}
		}
		// A matching Port with no Handler (and no Subtree, already ruled
		// out above) is malformed — ValidatePortsTable should have caught
		// it at construction time. Treat it as not matched rather than
		// reporting a handler fired when nothing was invoked.
		if p.Handler == nil {
			continue
		}
		p.Handler.HandleMessage(msg, ctx)
		return true
	}
	return false
}

// ValidatePortsTable checks table, and every Subtree it reaches, against
// the Ports-table invariant declared on Port: each Port must carry exactly
// one of Handler or Subtree, and a non-empty Pattern. It returns the first
// problem found, wrapped with the offending Port's index and pattern, or
// nil if table is well-formed.
//
// This is a construction-time check, meant to run once — typically in
// main() or an init(), right after a Ports table literal is built and
// before it's ever handed to Dispatch — not on the audio thread. Dispatch
// itself never calls ValidatePortsTable and never validates; per spec.md
// §4.2, malformed tables are simply expected not to exist.
func ValidatePortsTable(table PortsTable) error {
	for i, p := range table {
		if p.Pattern == "" {
			return fmt.Errorf("osc: port %d: %w", i, ErrPortPatternEmpty)
		}
		hasHandler := p.Handler != nil
		hasSubtree := p.Subtree != nil
		if hasHandler == hasSubtree {
			return fmt.Errorf("osc: port %d (%q): %w", i, p.Pattern, ErrPortInvalid)
		}
		if hasSubtree {
			if err := ValidatePortsTable(*p.Subtree); err != nil {
				return fmt.Errorf("osc: port %d (%q) subtree: %w", i, p.Pattern, err)
			}
		}
	}
	return nil
}

// tagsHavePrefix reports whether types is a prefix of tags, without
// converting either to the other's representation.
func tagsHavePrefix(tags []byte, types string) bool {
	if len(tags) < len(types) {
		return false
	}
	for i := 0; i < len(types); i++ {
		if tags[i] != types[i] {
			return false
		}
	}
	return true
}

// splitFirstSegment splits addr (which must start with '/') into its first
// path segment and the remainder, the remainder starting with '/' if any
// path remains. Both seg and rest are windows into addr; ok is false if
// addr doesn't start with '/'.
func splitFirstSegment(addr []byte) (seg, rest []byte, ok bool) {
	if len(addr) == 0 || addr[0] != '/' {
		return nil, nil, false
	}
	for i := 1; i < len(addr); i++ {
		if addr[i] == '/' {
			return addr[1:i], addr[i:], true
		}
	}
	return addr[1:], nil, true
}
