package osc

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Arg is a single encodable OSC argument. Values are built with the Arg*
// constructors below and passed to Message by value; none of the
// constructors allocate, so building an argument list on the audio thread
// is safe.
type Arg struct {
	tag byte
	num uint64
	str string
	raw []byte
}

// Tag returns the OSC type tag character this argument encodes as.
func (a Arg) Tag() byte { return a.tag }

// ArgInt32 builds a 32-bit integer argument (tag 'i').
func ArgInt32(v int32) Arg { return Arg{tag: 'i', num: uint64(uint32(v))} }

// ArgFloat32 builds a 32-bit float argument (tag 'f').
func ArgFloat32(v float32) Arg { return Arg{tag: 'f', num: uint64(math.Float32bits(v))} }

// ArgString builds a string argument (tag 's'). The caller owns v; Message
// only reads it.
func ArgString(v string) Arg { return Arg{tag: 's', str: v} }

// ArgSymbol builds a symbol argument (tag 'S'), laid out like a string.
func ArgSymbol(v string) Arg { return Arg{tag: 'S', str: v} }

// ArgBlob builds a blob argument (tag 'b'). The caller owns v; Message only
// reads it.
func ArgBlob(v []byte) Arg { return Arg{tag: 'b', raw: v} }

// ArgInt64 builds a 64-bit integer argument (tag 'h').
func ArgInt64(v int64) Arg { return Arg{tag: 'h', num: uint64(v)} }

// ArgFloat64 builds a 64-bit float argument (tag 'd').
func ArgFloat64(v float64) Arg { return Arg{tag: 'd', num: math.Float64bits(v)} }

// ArgTimetag builds an OSC time tag argument (tag 't').
func ArgTimetag(v Timetag) Arg { return Arg{tag: 't', num: uint64(v)} }

// ArgChar builds a 32-bit character argument (tag 'c').
func ArgChar(v rune) Arg { return Arg{tag: 'c', num: uint64(uint32(v))} }

// ArgRGBA builds a 32-bit RGBA color argument (tag 'r').
func ArgRGBA(v [4]byte) Arg { return Arg{tag: 'r', num: uint64(binary.BigEndian.Uint32(v[:]))} }

// ArgMIDI builds a 4-byte MIDI message argument (tag 'm').
func ArgMIDI(v [4]byte) Arg { return Arg{tag: 'm', num: uint64(binary.BigEndian.Uint32(v[:]))} }

// ArgBool builds a boolean argument (tag 'T' or 'F'); neither carries a
// payload.
func ArgBool(v bool) Arg {
	if v {
		return Arg{tag: 'T'}
	}
	return Arg{tag: 'F'}
}

// ArgNil builds a nil argument (tag 'N'); carries no payload.
func ArgNil() Arg { return Arg{tag: 'N'} }

// ArgInfinitum builds an infinitum argument (tag 'I'); carries no payload.
func ArgInfinitum() Arg { return Arg{tag: 'I'} }

// Value is a decoded OSC argument, returned by Argument. Only the field
// matching Tag is meaningful; Bytes is a window into the original message
// buffer for 's', 'S', 'b', 'r' and 'm' and is valid only as long as that
// buffer is.
type Value struct {
	Tag     byte
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Timetag Timetag
	Bool    bool
	Bytes   []byte
}

// padTo4Str rounds n (a string's length without its null terminator) up to
// the next multiple of 4, always leaving room for at least one null byte.
func padTo4Str(n int) int {
	return ((n + 4) / 4) * 4
}

// padTo4 rounds n up to the next multiple of 4 with no null-terminator
// requirement, used for blob payloads.
func padTo4(n int) int {
	return ((n + 3) / 4) * 4
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// argWidth reports the number of wire bytes a's payload (including its own
// padding) will occupy, or -1 if a's tag is not recognized.
func argWidth(a Arg) int {
	switch a.tag {
	case 'i', 'f', 'c', 'r', 'm':
		return 4
	case 'h', 'd', 't':
		return 8
	case 's', 'S':
		return padTo4Str(len(a.str))
	case 'b':
		return 4 + padTo4(len(a.raw))
	case 'T', 'F', 'N', 'I':
		return 0
	default:
		return -1
	}
}

// Message encodes address and args into buf, OSC 1.0 style: address, then
// type tag string, then each argument's payload, each individually 4-byte
// aligned. It returns the number of bytes written and true on success, or
// (0, false) if address is invalid or buf is too small to hold the
// encoding — in the latter case buf's contents are left undefined. Message
// never allocates and never blocks.
func Message(buf []byte, address string, args ...Arg) (int, bool) {
	if len(address) == 0 || address[0] != '/' {
		return 0, false
	}

	pos := 0
	addrTotal := padTo4Str(len(address))
	if addrTotal > len(buf) {
		return 0, false
	}
	copy(buf[pos:], address)
	zero(buf[pos+len(address) : pos+addrTotal])
	pos += addrTotal

	tagLen := 1 + len(args)
	tagTotal := padTo4Str(tagLen)
	if pos+tagTotal > len(buf) {
		return 0, false
	}
	buf[pos] = ','
	for i, a := range args {
		buf[pos+1+i] = a.tag
	}
	zero(buf[pos+tagLen : pos+tagTotal])
	pos += tagTotal

	for _, a := range args {
		w := argWidth(a)
		if w < 0 || pos+w > len(buf) {
			return 0, false
		}
		switch a.tag {
		case 'i', 'f', 'c', 'r', 'm':
			binary.BigEndian.PutUint32(buf[pos:], uint32(a.num))
		case 'h', 'd', 't':
			binary.BigEndian.PutUint64(buf[pos:], a.num)
		case 's', 'S':
			copy(buf[pos:], a.str)
			zero(buf[pos+len(a.str) : pos+w])
		case 'b':
			binary.BigEndian.PutUint32(buf[pos:], uint32(len(a.raw)))
			copy(buf[pos+4:], a.raw)
			zero(buf[pos+4+len(a.raw) : pos+w])
		}
		pos += w
	}

	return pos, true
}

// AddressBytes returns the address of an encoded message as a window into
// buf, with no copy.
func AddressBytes(buf []byte) ([]byte, bool) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return nil, false
	}
	return buf[:idx], true
}

// Address returns the address of an encoded message as a string. Unlike
// AddressBytes this copies, so it is a convenience for non-realtime callers
// (logging, pretty-printing) rather than the hot dispatch path.
func Address(buf []byte) (string, bool) {
	b, ok := AddressBytes(buf)
	if !ok {
		return "", false
	}
	return string(b), true
}

// TagBytes returns the type tag characters of an encoded message (after the
// leading ',', before the terminating 0) as a window into buf, with no
// copy.
func TagBytes(buf []byte) ([]byte, bool) {
	addr, ok := AddressBytes(buf)
	if !ok {
		return nil, false
	}
	off := padTo4Str(len(addr))
	if off >= len(buf) || buf[off] != ',' {
		return nil, false
	}
	idx := bytes.IndexByte(buf[off:], 0)
	if idx < 0 {
		return nil, false
	}
	return buf[off+1 : off+idx], true
}

// NArguments returns the number of arguments in an encoded message. Every
// type tag, including the zero-payload immediates, counts as one argument.
func NArguments(buf []byte) (int, bool) {
	tags, ok := TagBytes(buf)
	if !ok {
		return 0, false
	}
	return len(tags), true
}

// Type returns the type tag character of the i-th argument.
func Type(buf []byte, i int) (byte, bool) {
	tags, ok := TagBytes(buf)
	if !ok || i < 0 || i >= len(tags) {
		return 0, false
	}
	return tags[i], true
}

// payloadWidth reports how many bytes the argument with the given tag
// occupies at the front of buf, including its own padding.
func payloadWidth(buf []byte, tag byte) (int, bool) {
	switch tag {
	case 'i', 'f', 'c', 'r', 'm':
		if len(buf) < 4 {
			return 0, false
		}
		return 4, true
	case 'h', 'd', 't':
		if len(buf) < 8 {
			return 0, false
		}
		return 8, true
	case 's', 'S':
		idx := bytes.IndexByte(buf, 0)
		if idx < 0 {
			return 0, false
		}
		return padTo4Str(idx), true
	case 'b':
		if len(buf) < 4 {
			return 0, false
		}
		n := int(binary.BigEndian.Uint32(buf))
		if n < 0 {
			return 0, false
		}
		total := 4 + padTo4(n)
		if len(buf) < total {
			return 0, false
		}
		return total, true
	case 'T', 'F', 'N', 'I':
		return 0, true
	default:
		return 0, false
	}
}

// MessageLength parses an encoded message far enough to report its total
// size in bytes, address through the last argument's padding.
func MessageLength(buf []byte) (int, bool) {
	addr, ok := AddressBytes(buf)
	if !ok {
		return 0, false
	}
	pos := padTo4Str(len(addr))

	tags, ok := TagBytes(buf)
	if !ok {
		return 0, false
	}
	pos += padTo4Str(1 + len(tags))

	for _, t := range tags {
		w, ok := payloadWidth(buf[pos:], t)
		if !ok {
			return 0, false
		}
		pos += w
	}
	return pos, true
}

func decodeArg(buf []byte, tag byte) (Value, bool) {
	switch tag {
	case 'i':
		if len(buf) < 4 {
			return Value{}, false
		}
		return Value{Tag: tag, Int32: int32(binary.BigEndian.Uint32(buf))}, true
	case 'f':
		if len(buf) < 4 {
			return Value{}, false
		}
		return Value{Tag: tag, Float32: math.Float32frombits(binary.BigEndian.Uint32(buf))}, true
	case 'c':
		if len(buf) < 4 {
			return Value{}, false
		}
		return Value{Tag: tag, Int32: int32(binary.BigEndian.Uint32(buf))}, true
	case 'r', 'm':
		if len(buf) < 4 {
			return Value{}, false
		}
		return Value{Tag: tag, Bytes: buf[:4]}, true
	case 'h':
		if len(buf) < 8 {
			return Value{}, false
		}
		return Value{Tag: tag, Int64: int64(binary.BigEndian.Uint64(buf))}, true
	case 't':
		if len(buf) < 8 {
			return Value{}, false
		}
		return Value{Tag: tag, Timetag: Timetag(binary.BigEndian.Uint64(buf))}, true
	case 'd':
		if len(buf) < 8 {
			return Value{}, false
		}
		return Value{Tag: tag, Float64: math.Float64frombits(binary.BigEndian.Uint64(buf))}, true
	case 's', 'S':
		idx := bytes.IndexByte(buf, 0)
		if idx < 0 {
			return Value{}, false
		}
		return Value{Tag: tag, Bytes: buf[:idx]}, true
	case 'b':
		if len(buf) < 4 {
			return Value{}, false
		}
		n := int(binary.BigEndian.Uint32(buf))
		if n < 0 || len(buf) < 4+n {
			return Value{}, false
		}
		return Value{Tag: tag, Bytes: buf[4 : 4+n]}, true
	case 'T':
		return Value{Tag: tag, Bool: true}, true
	case 'F':
		return Value{Tag: tag, Bool: false}, true
	case 'N', 'I':
		return Value{Tag: tag}, true
	default:
		return Value{}, false
	}
}

// Argument locates and decodes the i-th argument of an encoded message. It
// is O(i): each call walks the type tags and sums the byte width of every
// prior argument. Argument is pure; it never mutates buf.
func Argument(buf []byte, i int) (Value, bool) {
	addr, ok := AddressBytes(buf)
	if !ok {
		return Value{}, false
	}
	pos := padTo4Str(len(addr))

	tags, ok := TagBytes(buf)
	if !ok || i < 0 || i >= len(tags) {
		return Value{}, false
	}
	pos += padTo4Str(1 + len(tags))

	for idx := 0; idx < i; idx++ {
		w, ok := payloadWidth(buf[pos:], tags[idx])
		if !ok {
			return Value{}, false
		}
		pos += w
	}
	return decodeArg(buf[pos:], tags[i])
}

// ValidateMessage walks buf as an OSC message and reports the first
// structural problem it finds, or nil if buf is well-formed. It exists for
// non-realtime callers — the pretty-printer collaborator (spec.md §6) and
// ParsePacket (packet.go) — that want to know *why* a buffer is malformed rather
// than the bare false the hot-path accessors return. The core
// encode/decode/dispatch path never calls ValidateMessage; it trusts its
// own encoder and ThreadLink's own framing, per spec.md §7.
func ValidateMessage(buf []byte) error {
	if len(buf) == 0 {
		return ErrBufferTooSmall
	}
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 || idx == 0 || buf[0] != '/' {
		return ErrAddressInvalid
	}
	pos := padTo4Str(idx)
	if pos >= len(buf) {
		return ErrBufferTooSmall
	}
	if buf[pos] != ',' {
		return ErrTypeTagStartMissing
	}

	tagsEnd := bytes.IndexByte(buf[pos:], 0)
	if tagsEnd < 0 {
		return ErrStringUnterminated
	}
	tags := buf[pos+1 : pos+tagsEnd]
	pos += padTo4Str(1 + len(tags))
	if pos > len(buf) {
		return ErrBufferTooSmall
	}

	for _, tag := range tags {
		w, ok := payloadWidth(buf[pos:], tag)
		if !ok {
			switch tag {
			case 's', 'S':
				return ErrStringUnterminated
			case 'i', 'f', 'c', 'r', 'm', 'h', 'd', 't', 'b':
				return ErrArgumentTooShort
			default:
				return UnknownTypeTagError{Tag: tag}
			}
		}
		pos += w
	}
	return nil
}

// MessageChecked is Message's checked counterpart: instead of a bare 0,
// false, it reports which of the encoder's preconditions failed. It is
// meant for non-realtime callers assembling messages away from the audio
// thread (tests, example binaries, tooling); the audio thread itself should
// keep calling Message, which never allocates an error value.
func MessageChecked(buf []byte, address string, args ...Arg) (int, error) {
	if len(address) == 0 || address[0] != '/' {
		return 0, ErrAddressInvalid
	}
	for _, a := range args {
		if argWidth(a) < 0 {
			return 0, UnknownTypeTagError{Tag: a.tag}
		}
	}
	n, ok := Message(buf, address, args...)
	if !ok {
		return 0, ErrBufferTooSmall
	}
	return n, nil
}

// ArgumentChecked is Argument's checked counterpart, reporting why a
// decode failed instead of a bare false: ErrArgumentIndex for an
// out-of-range i, or the ValidateMessage error describing the first
// structural problem in buf. Like ValidateMessage, it is for non-realtime
// callers; the audio thread should keep calling Argument.
func ArgumentChecked(buf []byte, i int) (Value, error) {
	if err := ValidateMessage(buf); err != nil {
		return Value{}, err
	}
	n, ok := NArguments(buf)
	if !ok || i < 0 || i >= n {
		return Value{}, ErrArgumentIndex
	}
	v, ok := Argument(buf, i)
	if !ok {
		return Value{}, ErrArgumentTooShort
	}
	return v, nil
}
