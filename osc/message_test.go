package osc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		desc    string
		address string
		args    []Arg
	}{
		{"no args", "/ping", nil},
		{"int32", "/vol", []Arg{ArgInt32(-7)}},
		{"float32", "/freq", []Arg{ArgFloat32(440.5)}},
		{"string", "/name", []Arg{ArgString("lead")}},
		{"symbol", "/sym", []Arg{ArgSymbol("osc")}},
		{"blob odd length", "/blob", []Arg{ArgBlob([]byte{1, 2, 3})}},
		{"blob empty", "/blob", []Arg{ArgBlob(nil)}},
		{"int64", "/big", []Arg{ArgInt64(1 << 40)}},
		{"float64", "/precise", []Arg{ArgFloat64(3.14159265)}},
		{"timetag", "/when", []Arg{ArgTimetag(Immediately)}},
		{"char", "/ch", []Arg{ArgChar('x')}},
		{"rgba", "/color", []Arg{ArgRGBA([4]byte{0xff, 0x00, 0x80, 0xff})}},
		{"midi", "/midi", []Arg{ArgMIDI([4]byte{0x90, 0x40, 0x7f, 0x00})}},
		{"bool true", "/gate", []Arg{ArgBool(true)}},
		{"bool false", "/gate", []Arg{ArgBool(false)}},
		{"nil", "/clear", []Arg{ArgNil()}},
		{"infinitum", "/loop", []Arg{ArgInfinitum()}},
		{"mixed", "/mix", []Arg{ArgInt32(1), ArgString("two"), ArgFloat32(3), ArgBool(true)}},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			buf := make([]byte, 256)
			n, ok := Message(buf, tt.address, tt.args...)
			require.True(t, ok)
			buf = buf[:n]

			addr, ok := Address(buf)
			require.True(t, ok)
			assert.Equal(t, tt.address, addr)

			nargs, ok := NArguments(buf)
			require.True(t, ok)
			require.Equal(t, len(tt.args), nargs)

			for i, want := range tt.args {
				tag, ok := Type(buf, i)
				require.True(t, ok)
				assert.Equal(t, want.Tag(), tag)

				got, ok := Argument(buf, i)
				require.True(t, ok)
				assertArgEqual(t, want, got)
			}
		})
	}
}

func assertArgEqual(t *testing.T, want Arg, got Value) {
	t.Helper()
	switch want.Tag() {
	case 'i':
		assert.EqualValues(t, int32(int32(want.num)), got.Int32)
	case 'c':
		assert.EqualValues(t, int32(want.num), got.Int32)
	case 'f':
		assert.InDelta(t, math.Float32frombits(uint32(want.num)), got.Float32, 1e-6)
	case 's', 'S':
		assert.Equal(t, want.str, string(got.Bytes))
	case 'b':
		assert.Equal(t, want.raw, got.Bytes)
	case 'h':
		assert.EqualValues(t, int64(want.num), got.Int64)
	case 'd':
		assert.InDelta(t, math.Float64frombits(want.num), got.Float64, 1e-9)
	case 't':
		assert.Equal(t, Timetag(want.num), got.Timetag)
	case 'r', 'm':
		require.Len(t, got.Bytes, 4)
	case 'T':
		assert.True(t, got.Bool)
	case 'F':
		assert.False(t, got.Bool)
	case 'N', 'I':
		// zero-payload, nothing further to check
	default:
		t.Fatalf("unhandled tag %q in test helper", want.Tag())
	}
}

func TestMessageRejectsBadAddress(t *testing.T) {
	buf := make([]byte, 64)
	_, ok := Message(buf, "no-leading-slash")
	assert.False(t, ok)
}

func TestMessageRejectsShortBuffer(t *testing.T) {
	buf := make([]byte, 4)
	_, ok := Message(buf, "/too/long/for/this/buffer", ArgInt32(1))
	assert.False(t, ok)
}

func TestTagBytes(t *testing.T) {
	buf := make([]byte, 64)
	n, ok := Message(buf, "/x", ArgInt32(1), ArgString("y"))
	require.True(t, ok)
	tags, ok := TagBytes(buf[:n])
	require.True(t, ok)
	assert.Equal(t, "is", string(tags))
}

func TestArgumentOutOfRange(t *testing.T) {
	buf := make([]byte, 64)
	n, ok := Message(buf, "/x", ArgInt32(1))
	require.True(t, ok)
	_, ok = Argument(buf[:n], 5)
	assert.False(t, ok)
}

func TestValidateMessage(t *testing.T) {
	for _, tt := range []struct {
		desc    string
		buf     []byte
		wantErr error
	}{
		{"well formed", encodeMsg(t, "/ok", ArgInt32(1), ArgString("x")), nil},
		{"empty buffer", nil, ErrBufferTooSmall},
		{"missing leading slash", append([]byte("noslash"), 0, 0), ErrAddressInvalid},
		{"address never terminated", []byte("/abcd"), ErrAddressInvalid},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			err := ValidateMessage(tt.buf)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateMessageDetectsBadTagStart(t *testing.T) {
	buf := encodeMsg(t, "/ok", ArgInt32(1))
	buf[4] = 'x' // overwrite the leading ',' of the tag string
	assert.ErrorIs(t, ValidateMessage(buf), ErrTypeTagStartMissing)
}

func TestValidateMessageDetectsUnknownTag(t *testing.T) {
	buf := encodeMsg(t, "/ok", ArgInt32(1))
	buf[5] = 'z' // overwrite the 'i' tag char with an unrecognized one
	var tagErr UnknownTypeTagError
	assert.ErrorAs(t, ValidateMessage(buf), &tagErr)
	assert.Equal(t, byte('z'), tagErr.Tag)
}

func TestValidateMessageDetectsTruncatedString(t *testing.T) {
	buf := make([]byte, 64)
	n, ok := Message(buf, "/s", ArgString("hello"))
	require.True(t, ok)
	buf = buf[:n]
	// "hello" (5 bytes) pads to 8, leaving exactly 3 trailing NUL bytes;
	// overwrite all three so the string argument never terminates.
	for i := n - 3; i < n; i++ {
		buf[i] = 'x'
	}
	assert.ErrorIs(t, ValidateMessage(buf), ErrStringUnterminated)
}

func TestMessageCheckedMirrorsMessage(t *testing.T) {
	buf := make([]byte, 64)
	n, err := MessageChecked(buf, "/ok", ArgInt32(1))
	require.NoError(t, err)
	want, ok := Message(make([]byte, 64), "/ok", ArgInt32(1))
	require.True(t, ok)
	assert.Equal(t, want, n)
}

func TestMessageCheckedReportsBadAddress(t *testing.T) {
	buf := make([]byte, 64)
	_, err := MessageChecked(buf, "no-leading-slash")
	assert.ErrorIs(t, err, ErrAddressInvalid)
}

func TestMessageCheckedReportsShortBuffer(t *testing.T) {
	buf := make([]byte, 4)
	_, err := MessageChecked(buf, "/too/long/for/this/buffer", ArgInt32(1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestArgumentCheckedReportsOutOfRange(t *testing.T) {
	buf := encodeMsg(t, "/x", ArgInt32(1))
	_, err := ArgumentChecked(buf, 5)
	assert.ErrorIs(t, err, ErrArgumentIndex)
}

func TestArgumentCheckedMirrorsArgument(t *testing.T) {
	buf := encodeMsg(t, "/x", ArgFloat32(1.5))
	want, ok := Argument(buf, 0)
	require.True(t, ok)
	got, err := ArgumentChecked(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
