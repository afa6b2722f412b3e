package exynos

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hatchery/src/hardware/bus"
	"hatchery/src/tools/sysdec"
)

func TestExynos5800Layout(t *testing.T) {
	assert.Equal(t, bus.Range{Base: 0x1004_0000, Size: 0x2_0000}, Exynos5800PMU)
	assert.Equal(t, bus.Range{Base: 0x0207_301c, Size: 4}, Exynos5800BootVector)
	assert.Equal(t, bus.Range{Base: 0x1004_0400, Size: 4}, SWResetRange)
	assert.Equal(t, uint32(0x3), CorePowerEnable)
	assert.Equal(t, uint32(1), SWResetAssert)

	for n := 0; n < 4; n++ {
		assert.Equal(t, uintptr(0x2000+0x80*n), CoreConfigOffset(n))
		assert.Equal(t, uintptr(0x2004+0x80*n), CoreStatusOffset(n))
	}
	assert.Panics(t, func() { CoreConfigOffset(4) })
}

func TestUARTLayout(t *testing.T) {
	assert.Equal(t, uintptr(0x18), UFSTAT)
	assert.Equal(t, uintptr(0x20), UTXH)
	assert.Equal(t, uint32(1<<24), UFSTATTxFull)

	uart, err := Exynos5800.Block("UART2")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x12c2_0000), uart.Base)
}

func TestNumCPU(t *testing.T) {
	assert.Equal(t, 1, NumCPU(0))
	assert.Equal(t, 4, NumCPU(0x0300_0000))
	assert.Equal(t, 2, NumCPU(0x0100_0000|0x00ff_ffff))
	assert.Equal(t, 3, NumCPU(0xfe00_0000))
}

func TestPhysToVirt(t *testing.T) {
	assert.Equal(t, uintptr(0xf2c2_0000), PhysToVirt(0x12c2_0000))
	assert.Equal(t, CoreVBase, PhysToVirt(CorePBase))
}

func TestDevicesDescribe(t *testing.T) {
	for _, d := range Devices {
		var buf bytes.Buffer
		require.NoError(t, sysdec.Describe(d, &buf), d.Name)
		assert.Contains(t, buf.String(), "CoreConfiguration[4] stride 0x00080")
	}
}
