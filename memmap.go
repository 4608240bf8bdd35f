// memmap.go - Address-region table for the R3000A address decoder

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later

Adapted from this project's original "Master I/O Register Address Map"
(video/audio chip windows) into the fixed memory-window table of a
first-generation console's address decoder. The windows below are not
backed by emulated hardware: everything except RAM and BIOS is a logging
stub, since the GPU/SPU/DMA/IRQ/timer/EXP devices behind them are external
collaborators this core never models.
*/

package core

// memWindow names one fixed physical-address window the decoder can route
// an access to.
type memWindow int

const (
	winRAM memWindow = iota
	winEXP1
	winSysCtrl
	winRAMCtrl
	winIRQCtrl
	winDMA
	winTimers
	winGPU
	winSPU
	winEXP2
	winEXP3
	winBIOS
	winCacheCtrl
	winUnmapped
)

func (w memWindow) String() string {
	switch w {
	case winRAM:
		return "RAM"
	case winEXP1:
		return "EXP1"
	case winSysCtrl:
		return "SYS_CTRL"
	case winRAMCtrl:
		return "RAM_CTRL"
	case winIRQCtrl:
		return "IRQ_CTRL"
	case winDMA:
		return "DMA"
	case winTimers:
		return "TIMERS"
	case winGPU:
		return "GPU"
	case winSPU:
		return "SPU"
	case winEXP2:
		return "EXP2"
	case winEXP3:
		return "EXP3"
	case winBIOS:
		return "BIOS"
	case winCacheCtrl:
		return "CACHE_CTRL"
	default:
		return "UNMAPPED"
	}
}

// regionEntry is one row of the fixed, branch-predictor-friendly address
// table the decoder scans linearly on every access.
type regionEntry struct {
	name   memWindow
	start  uint32
	length uint32
}

// regionTable lists every named physical-address window. RAM and BIOS are
// the only entries with real backing storage; everything else routes to a
// stub that logs and returns a benign value.
var regionTable = [...]regionEntry{
	{winRAM, 0x0000_0000, 2 * 1024 * 1024},
	{winEXP1, 0x1F00_0000, 8 * 1024 * 1024},
	{winSysCtrl, 0x1F80_1000, 36},
	{winRAMCtrl, 0x1F80_1060, 4},
	{winIRQCtrl, 0x1F80_1070, 8},
	{winDMA, 0x1F80_1080, 128},
	{winTimers, 0x1F80_1100, 48},
	{winGPU, 0x1F80_1810, 8},
	{winSPU, 0x1F80_1C00, 640},
	{winEXP2, 0x1F80_2000, 66},
	{winEXP3, 0x1FA0_0000, 2 * 1024 * 1024},
	{winBIOS, 0x1FC0_0000, 512 * 1024},
	{winCacheCtrl, 0xFFFE_0130, 4},
}

// regionMaskTable maps the top 3 bits of a virtual address to the mask
// applied to produce a physical address. KUSEG and KSEG2 are each covered
// by more than one top-3-bit pattern.
var regionMaskTable = [8]uint32{
	0xFFFFFFFF, // 0x0 KUSEG
	0xFFFFFFFF, // 0x1 KUSEG
	0xFFFFFFFF, // 0x2 KUSEG
	0xFFFFFFFF, // 0x3 KUSEG
	0x7FFFFFFF, // 0x4 KSEG0
	0x1FFFFFFF, // 0x5 KSEG1
	0xFFFFFFFF, // 0x6 KSEG2
	0xFFFFFFFF, // 0x7 KSEG2
}

// translate masks a virtual address down to its physical address using the
// top-3-bit region table; there is no TLB to consult.
func translate(vaddr uint32) uint32 {
	return vaddr & regionMaskTable[vaddr>>29]
}

// locate finds which region table entry, if any, contains the given
// physical address, along with the offset within that window.
func locate(paddr uint32) (regionEntry, uint32, bool) {
	for _, e := range regionTable {
		if paddr >= e.start && paddr < e.start+e.length {
			return e, paddr - e.start, true
		}
	}
	return regionEntry{}, 0, false
}
