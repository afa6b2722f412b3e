package exynos

import "hatchery/src/tools/sysdec"

// SSCOM is the Samsung UART.  The early console only ever uses the FIFO
// status and transmit holding registers.
var SSCOM = &sysdec.PeripheralDef{
	Description:  `Samsung serial (UART) controller.`,
	AddressBlock: sysdec.AddressBlockDef{BaseAddress: 0x0, Size: 0x100},
	Register: map[string]*sysdec.RegisterDef{
		"ULCON":   {AddressOffset: 0x00, Size: 32, Access: sysdec.Access("rw")},
		"UCON":    {AddressOffset: 0x04, Size: 32, Access: sysdec.Access("rw")},
		"UFCON":   {AddressOffset: 0x08, Size: 32, Access: sysdec.Access("rw")},
		"UTRSTAT": {AddressOffset: 0x10, Size: 32, Access: sysdec.Access("r")},
		"UFSTAT": {
			AddressOffset: 0x18,
			Size:          32,
			Access:        sysdec.Access("r"),
			Field: map[string]*sysdec.FieldDef{
				"TxFull":  {BitRange: sysdec.BitRange(24, 24)},
				"TxCount": {BitRange: sysdec.BitRange(23, 16)},
				"RxFull":  {BitRange: sysdec.BitRange(8, 8)},
				"RxCount": {BitRange: sysdec.BitRange(7, 0)},
			},
		},
		"UTXH":   {AddressOffset: 0x20, Size: 8, Access: sysdec.Access("w")},
		"URXH":   {AddressOffset: 0x24, Size: 8, Access: sysdec.Access("r")},
		"UBRDIV": {AddressOffset: 0x28, Size: 32, Access: sysdec.Access("rw")},
	},
}
