package exynos

import "hatchery/src/tools/sysdec"

// PMU is the power management unit.  Each core has a configuration and a
// status register, 0x80 apart; writing LocalPwrCfg=PowerEnable to a core's
// configuration powers it and the status register reports the same bits
// once the core's power domain is up.
var PMU = &sysdec.PeripheralDef{
	Description:  `Power management unit (ARM core power domains and system reset).`,
	AddressBlock: sysdec.AddressBlockDef{BaseAddress: 0x0, Size: 0x2_0000},
	Register: map[string]*sysdec.RegisterDef{
		"SWReset": {
			Description:   "Writing 1 resets the whole SoC.",
			AddressOffset: 0x400,
			Size:          32,
			Access:        sysdec.Access("w"),
			Field: map[string]*sysdec.FieldDef{
				"Reset": {BitRange: sysdec.BitRange(0, 0),
					EnumeratedValue: map[string]*sysdec.EnumeratedValueDef{
						"Assert": {Value: 1},
					}},
			},
		},
		"CoreConfiguration[%s]": {
			Description:   "ARM_CORE<n>_CONFIGURATION",
			AddressOffset: 0x2000,
			Size:          32,
			Access:        sysdec.Access("rw"),
			Dim:           4,
			DimIncrement:  0x80,
			Field: map[string]*sysdec.FieldDef{
				"LocalPwrCfg": {BitRange: sysdec.BitRange(1, 0),
					EnumeratedValue: map[string]*sysdec.EnumeratedValueDef{
						"PowerDown":   {Value: 0},
						"PowerEnable": {Value: 3},
					}},
			},
		},
		"CoreStatus[%s]": {
			Description:   "ARM_CORE<n>_STATUS",
			AddressOffset: 0x2004,
			Size:          32,
			Access:        sysdec.Access("r"),
			Dim:           4,
			DimIncrement:  0x80,
			Field: map[string]*sysdec.FieldDef{
				"Status": {BitRange: sysdec.BitRange(1, 0)},
			},
		},
	},
}

// BootVector is the word in internal SRAM that a secondary reads when it
// leaves reset.  It has to hold the physical address to branch to.
var BootVector = &sysdec.PeripheralDef{
	Description:  `iROM secondary CPU boot address (in SYSRAM).`,
	AddressBlock: sysdec.AddressBlockDef{BaseAddress: 0x0, Size: 0x4},
	Register: map[string]*sysdec.RegisterDef{
		"Entry": {
			AddressOffset: 0x0,
			Size:          32,
			Access:        sysdec.Access("rw"),
		},
	},
}
