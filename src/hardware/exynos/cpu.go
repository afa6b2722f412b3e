package exynos

import "hatchery/src/tools/sysdec"

// L2CTLR is the Cortex-A15 L2 Control Register (CP15 c9, c0, 2).  Its NumCPU
// field is the number of cores in the cluster minus one.
var L2CTLR = &sysdec.RegisterDef{
	Name:   "L2CTLR",
	Access: sysdec.Access("r"),
	Field: map[string]*sysdec.FieldDef{
		"NumCPU": {
			Description: "Number of processors present in the cluster, minus one.",
			BitRange:    sysdec.BitRange(25, 24),
		},
	},
}

// NumCPU extracts the core count from a raw L2CTLR value.
func NumCPU(l2ctlr uint32) int {
	f := L2CTLR.Field["NumCPU"]
	return 1 + int((l2ctlr&f.Mask())>>uint(f.BitRange.Lsb))
}
