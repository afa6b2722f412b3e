// Package exynos has the physical layout of the Samsung Exynos 4 and 5
// families: where the device windows are, how they are mapped early in boot,
// and the register declarations the boot code needs.  Values are from the
// Exynos 4412 and 5800 user manuals; a wrong value here is a silent write to
// the wrong register, nothing checks it at run time.
package exynos

// All on-chip peripherals live in one window starting at CorePBase.  The
// boot page tables map it at CoreVBase so early code can reach it through
// either alias.
const (
	CorePBase = uintptr(0x1000_0000)
	CoreVBase = uintptr(0xf000_0000)

	Exynos4CoreSize = uintptr(0x0200_0000)
	Exynos5CoreSize = uintptr(0x0400_0000)
)

// audio subsystem and internal SRAM sit outside the core window
const (
	Exynos4AudioCorePBase = uintptr(0x0300_0000)
	Exynos4AudioCoreVBase = CoreVBase + Exynos4CoreSize
	Exynos4AudioCoreSize  = uintptr(0x0010_0000)

	Exynos5AudioCorePBase = uintptr(0x0380_0000)
	Exynos5AudioCoreVBase = CoreVBase + Exynos5CoreSize
	Exynos5AudioCoreSize  = uintptr(0x0010_0000)

	Exynos5SysRAMPBase = uintptr(0x0202_0000)
	Exynos5SysRAMVBase = Exynos5AudioCoreVBase + Exynos5AudioCoreSize
	Exynos5SysRAMSize  = uintptr(0x0008_0000)
)

// PhysToVirt converts an address in the core window to its early mapping.
func PhysToVirt(pa uintptr) uintptr {
	return pa - CorePBase + CoreVBase
}

// UARTFreq is the SCLK_UART rate the firmware leaves the UARTs running at.
const UARTFreq = uint32(24_000_000)
