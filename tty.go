// tty.go - Guest putchar hook and the raw-mode host console for the monitor

/*
Adapted from this project's terminal_host.go: the same term.MakeRaw /
term.Restore pattern drives the debug monitor's keyboard input, but there
is no guest-visible TERM_IN/TERM_KEY_IN MMIO device here — the only
guest-facing contract is the BIOS putchar hook (§6), a single byte emitted
per step, never read back.
*/

package core

import (
	"bufio"
	"fmt"
	"sync"

	"golang.org/x/term"
)

const (
	ttyHookA0 = 0xA0
	ttyHookB0 = 0xB0
	ttyFnA0   = 0x3C
	ttyFnB0   = 0x3D
)

// CheckPutchar inspects the CPU state right after a step and, if the BIOS
// just called one of its two putchar entry points, writes the low byte of
// r4 to w. The PC is masked with 0x1FFF_FFFF so the hook fires regardless
// of which KSEG the BIOS call was made from.
func CheckPutchar(cpu *CPU, w *bufio.Writer) {
	maskedPC := cpu.Regs.currPC & 0x1FFF_FFFF
	r9 := cpu.Regs.Get(9)
	switch {
	case maskedPC == ttyHookA0 && r9 == ttyFnA0:
	case maskedPC == ttyHookB0 && r9 == ttyFnB0:
	default:
		return
	}
	w.WriteByte(byte(cpu.Regs.Get(4)))
	w.Flush()
}

// TTYHost puts stdin into raw mode so the monitor's runRaw can read it a
// byte at a time, the way terminal_host.go does for its TerminalHost.
// NewTTYHost is called only in interactive (-monitor) mode; the tests use a
// zero-value TTYHost, which never changes the terminal mode.
type TTYHost struct {
	fd           int
	oldTermState *term.State
	stopped      sync.Once
}

// NewTTYHost puts the given file descriptor's terminal into raw mode.
func NewTTYHost(fd int) (*TTYHost, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("tty: failed to set raw mode: %w", err)
	}
	return &TTYHost{fd: fd, oldTermState: oldState}, nil
}

// Width reports the current terminal width, falling back to 80 columns
// when the size cannot be queried (e.g. output redirected to a file).
func (h *TTYHost) Width() int {
	w, _, err := term.GetSize(h.fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// Restore puts the terminal back into its original (cooked) mode.
func (h *TTYHost) Restore() {
	h.stopped.Do(func() {
		if h.oldTermState != nil {
			_ = term.Restore(h.fd, h.oldTermState)
		}
	})
}
