package ringlink

import (
	"testing"

	"github.com/kward/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkWriteReadOrder(t *testing.T) {
	l := NewLink(1024, 128)

	require.True(t, l.WriteUp("/a", osc.ArgInt32(1)))
	require.True(t, l.WriteUp("/b", osc.ArgInt32(2)))
	require.True(t, l.WriteUp("/c", osc.ArgInt32(3)))

	for _, want := range []string{"/a", "/b", "/c"} {
		msg, ok := l.ReadUp()
		require.True(t, ok)
		addr, ok := osc.Address(msg)
		require.True(t, ok)
		assert.Equal(t, want, addr)
	}
	_, ok := l.ReadUp()
	assert.False(t, ok)
}

func TestLinkDirectionsAreIndependent(t *testing.T) {
	l := NewLink(1024, 128)

	require.True(t, l.WriteDown("/meter", osc.ArgFloat32(0.5)))
	assert.False(t, l.HasNextUp())
	assert.True(t, l.HasNextDown())

	msg, ok := l.ReadDown()
	require.True(t, ok)
	addr, _ := osc.Address(msg)
	assert.Equal(t, "/meter", addr)
}

func TestLinkDispatchDrainsInOrder(t *testing.T) {
	l := NewLink(1024, 128)

	var seen []int32
	table := osc.PortsTable{
		{Pattern: "v", Handler: osc.HandlerFunc(func(msg []byte, ctx any) {
			v, _ := osc.Argument(msg, 0)
			seen = append(seen, v.Int32)
		})},
	}

	require.True(t, l.WriteUp("/v", osc.ArgInt32(1)))
	require.True(t, l.WriteUp("/v", osc.ArgInt32(2)))
	require.True(t, l.WriteUp("/v", osc.ArgInt32(3)))

	n := DispatchUp(l, table, nil)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int32{1, 2, 3}, seen)
	assert.False(t, l.HasNextUp())
}

func TestLinkOversizedMessageDropped(t *testing.T) {
	l := NewLink(1024, 8) // too small for the address alone
	ok := l.WriteUp("/much/too/long/an/address/for/this/scratch/buffer")
	assert.False(t, ok)
}
