package exynos

import (
	"hatchery/src/hardware/bus"
	"hatchery/src/tools/sysdec"
)

var Exynos5800 = &sysdec.DeviceDef{
	Vendor:      "Samsung",
	Name:        "exynos5800",
	Compatible:  "samsung,exynos5800",
	Description: "Exynos 5 Octa 5800, quad Cortex-A15 + quad Cortex-A7",
	Cpu: sysdec.CPUDef{
		Name:         "CA15",
		Description:  "ARM Cortex-A15 MPCore",
		Revision:     "r2p3",
		LittleEndian: true,
		MMUPresent:   true,
	},
	NumCores: 4, //A15 cluster, the A7s are not brought up
	Peripheral: map[string]*sysdec.PeripheralDef{
		"PMU":        PMU,
		"BootVector": BootVector,
		"UART2":      SSCOM,
	},
	MMIOBindings: map[string]int{
		"PMU":        0x1004_0000,
		"BootVector": 0x0207_301c,
		"UART2":      0x12c2_0000,
	},
}

var Devices = []*sysdec.DeviceDef{Exynos5800}

// Exynos 5800 values the boot code uses directly.
var (
	Exynos5800PMU        = Exynos5800.MustBlock("PMU")
	Exynos5800BootVector = Exynos5800.MustBlock("BootVector")

	coreConfig = PMU.MustReg("CoreConfiguration")
	coreStatus = PMU.MustReg("CoreStatus")

	CorePowerEnable = coreConfig.MustField("LocalPwrCfg").MustEnum("PowerEnable")

	// SWResetRange is the one word reset register, mapped on its own.
	SWResetRange = bus.Range{
		Base: Exynos5800PMU.Base + PMU.MustReg("SWReset").Offset(0),
		Size: 4,
	}
	SWResetAssert = PMU.MustReg("SWReset").MustField("Reset").MustEnum("Assert")
)

// CoreConfigOffset is ARM_CORE<n>_CONFIGURATION from the PMU base.
func CoreConfigOffset(n int) uintptr {
	return coreConfig.Offset(n)
}

// CoreStatusOffset is ARM_CORE<n>_STATUS from the PMU base.
func CoreStatusOffset(n int) uintptr {
	return coreStatus.Offset(n)
}

// UART register offsets and bits for the early console.
var (
	UFSTAT = SSCOM.MustReg("UFSTAT").Offset(0)
	UTXH   = SSCOM.MustReg("UTXH").Offset(0)

	UFSTATTxFull = SSCOM.MustReg("UFSTAT").MustField("TxFull").Mask()
)
