// mmu.go - Address decoder: region-mask translation and window dispatch

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

Adapted from this project's memory_bus.go SystemBus: same idea of a fixed
window table dispatching to backing storage or an I/O stub, but with the
sync.RWMutex dropped — the core is single-threaded and synchronous by
design (§5), and every caller already owns the MMU exclusively.
*/

package core

import (
	"fmt"
	"os"
)

// MMU routes virtual addresses to RAM, BIOS, or a logging stub for every
// hardware-register window this core does not emulate. It never blocks and
// is never shared across goroutines, so it carries no synchronization.
type MMU struct {
	mem     *MemoryImage
	verbose bool // logs stub and unmapped accesses to stderr; false by default
}

// NewMMU wires a decoder to its backing memory image.
func NewMMU(mem *MemoryImage) *MMU {
	return &MMU{mem: mem}
}

// mmuFault is the panic value for the one condition the decoder itself
// considers a host/implementation error: an unaligned access reaching this
// layer (the CPU must catch guest misalignment earlier and raise the
// architectural exception instead). An access outside every known window is
// not a fault: reads return 0 and writes are dropped.
type mmuFault struct {
	msg string
}

func (f *mmuFault) Error() string { return f.msg }

func (m *MMU) stubRead(w memWindow) uint32 {
	if m.verbose {
		fmt.Fprintf(os.Stderr, "mmu: stub read from %s\n", w)
	}
	if w == winEXP1 {
		return 0xFFFFFFFF
	}
	return 0
}

func (m *MMU) stubWrite(w memWindow, value uint32) {
	if m.verbose {
		fmt.Fprintf(os.Stderr, "mmu: stub write %#x to %s\n", value, w)
	}
}

// Read32 fetches a 32-bit word. addr must be word-aligned; this is a fatal
// invariant violation at this layer, not an architectural exception.
func (m *MMU) Read32(addr uint32) uint32 {
	if addr&3 != 0 {
		panic(&mmuFault{fmt.Sprintf("unaligned word read at %#08x", addr)})
	}
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		if m.verbose {
			fmt.Fprintf(os.Stderr, "mmu: read from unmapped address %#08x\n", paddr)
		}
		return 0
	}
	switch entry.name {
	case winRAM:
		return m.mem.ramWord(off)
	case winBIOS:
		return m.mem.biosWord(off)
	default:
		return m.stubRead(entry.name)
	}
}

// Read16 fetches a halfword, zero-extended to 32 bits. addr must be
// halfword-aligned.
func (m *MMU) Read16(addr uint32) uint32 {
	if addr&1 != 0 {
		panic(&mmuFault{fmt.Sprintf("unaligned half read at %#08x", addr)})
	}
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		return 0
	}
	switch entry.name {
	case winRAM:
		return uint32(m.mem.ramHalf(off))
	case winBIOS:
		return uint32(m.mem.biosHalf(off))
	default:
		return m.stubRead(entry.name) & 0xFFFF
	}
}

// Read8 fetches a byte, zero-extended to 32 bits.
func (m *MMU) Read8(addr uint32) uint32 {
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		return 0
	}
	switch entry.name {
	case winRAM:
		return uint32(m.mem.ramByte(off))
	case winBIOS:
		return uint32(m.mem.biosByte(off))
	default:
		return m.stubRead(entry.name) & 0xFF
	}
}

// Write32 stores a 32-bit word. addr must be word-aligned.
func (m *MMU) Write32(addr uint32, value uint32) {
	if addr&3 != 0 {
		panic(&mmuFault{fmt.Sprintf("unaligned word write at %#08x", addr)})
	}
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		if m.verbose {
			fmt.Fprintf(os.Stderr, "mmu: write to unmapped address %#08x\n", paddr)
		}
		return
	}
	switch entry.name {
	case winRAM:
		m.mem.setRAMWord(off, value)
	case winBIOS:
		// ROM: writes are discarded.
	default:
		m.stubWrite(entry.name, value)
	}
}

// Write16 stores a halfword. addr must be halfword-aligned.
func (m *MMU) Write16(addr uint32, value uint32) {
	if addr&1 != 0 {
		panic(&mmuFault{fmt.Sprintf("unaligned half write at %#08x", addr)})
	}
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		return
	}
	switch entry.name {
	case winRAM:
		m.mem.setRAMHalf(off, uint16(value))
	case winBIOS:
	default:
		m.stubWrite(entry.name, value&0xFFFF)
	}
}

// Write8 stores a single byte.
func (m *MMU) Write8(addr uint32, value uint32) {
	paddr := translate(addr)
	entry, off, ok := locate(paddr)
	if !ok {
		return
	}
	switch entry.name {
	case winRAM:
		m.mem.setRAMByte(off, uint8(value))
	case winBIOS:
	default:
		m.stubWrite(entry.name, value&0xFF)
	}
}
