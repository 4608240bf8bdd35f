// debug_ioview.go - "io" monitor command: lists the fixed address-region windows

/*
Adapted from this project's ioDevices map of fictional chip registers into a
view over the real regionTable (memmap.go): one row per named window, with
RAM/BIOS marked as backed and everything else marked as a stub.
*/

package core

import "fmt"

// formatIOView renders the address-region table as a monitor-friendly
// listing, one line per window.
func formatIOView() string {
	out := "window        start        length       backing\n"
	for _, e := range regionTable {
		backing := "stub"
		if e.name == winRAM || e.name == winBIOS {
			backing = "memory"
		}
		out += fmt.Sprintf("%-12s   %#010x   %-10d   %s\n", e.name, e.start, e.length, backing)
	}
	return out
}

// describeAddress reports which window a physical address falls into, for
// the monitor's "where <addr>" command.
func describeAddress(paddr uint32) string {
	entry, off, ok := locate(paddr)
	if !ok {
		return fmt.Sprintf("%#08x is unmapped", paddr)
	}
	return fmt.Sprintf("%#08x is %s+%#x", paddr, entry.name, off)
}
