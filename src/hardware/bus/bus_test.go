package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeHelpers(t *testing.T) {
	pmu := Range{Base: 0x10040000, Size: 0x20000}
	sysram := Range{Base: 0x0207301c, Size: 4}

	assert.Equal(t, uintptr(0x10060000), pmu.End())
	assert.True(t, pmu.Contains(0x10042000))
	assert.False(t, pmu.Contains(0x10060000))
	assert.False(t, pmu.Overlaps(sysram))
	assert.True(t, pmu.Overlaps(Range{Base: 0x1005fffc, Size: 8}))
	assert.False(t, pmu.Overlaps(Range{Base: 0x10040000}))
	assert.Equal(t, "[0x207301c,0x2073020)", sysram.String())
}

func TestBarrierKindString(t *testing.T) {
	assert.Equal(t, "read|write", BarrierReadWrite.String())
	assert.Equal(t, "write", BarrierWrite.String())
	assert.Equal(t, "barrier(8)", BarrierKind(8).String())
}

func TestMemWindowReadWrite(t *testing.T) {
	r := Range{Base: 0x1000, Size: 0x100}
	w := NewMemWindow(r, make([]byte, 0x100))

	w.Write32(0x10, 0xdeadbeef)
	w.Barrier(0x10, 4, BarrierReadWrite)
	assert.Equal(t, uint32(0xdeadbeef), w.Read32(0x10))
	assert.Equal(t, uint32(0), w.Read32(0xfc))
	assert.Equal(t, r, w.Range())
}

func TestMemWindowBounds(t *testing.T) {
	w := NewMemWindow(Range{Base: 0x1000, Size: 0x10}, make([]byte, 0x10))

	assert.Panics(t, func() { w.Read32(0x10) })
	assert.Panics(t, func() { w.Write32(0x2, 1) })
	assert.Panics(t, func() { w.Barrier(0x8, 0x10, BarrierWrite) })
	assert.Panics(t, func() { w.Barrier(0, 4, BarrierKind(0)) })
	assert.Panics(t, func() { NewMemWindow(Range{Size: 0x20}, make([]byte, 0x10)) })
}

func TestMemWindowUseAfterRelease(t *testing.T) {
	w := NewMemWindow(Range{Base: 0x1000, Size: 0x8}, make([]byte, 0x8))
	w.Write32(0, 7)
	mem := w.release()
	require.Len(t, mem, 8)

	assert.Panics(t, func() { w.Read32(0) })
	assert.Panics(t, func() { w.Barrier(0, 4, BarrierRead) })
	assert.Panics(t, func() { w.release() })
}

func TestPageSpan(t *testing.T) {
	start, length := pageSpan(Range{Base: 0x0207301c, Size: 4}, 0x1000)
	assert.Equal(t, uintptr(0x02073000), start)
	assert.Equal(t, uintptr(0x1000), length)

	start, length = pageSpan(Range{Base: 0x10040000, Size: 0x20000}, 0x1000)
	assert.Equal(t, uintptr(0x10040000), start)
	assert.Equal(t, uintptr(0x20000), length)

	//straddles a page boundary
	start, length = pageSpan(Range{Base: 0x1ffc, Size: 8}, 0x1000)
	assert.Equal(t, uintptr(0x1000), start)
	assert.Equal(t, uintptr(0x2000), length)
}
