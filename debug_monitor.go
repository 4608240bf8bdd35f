// debug_monitor.go - Interactive REPL debugger driving a single CPU

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later

Rewritten from this project's MachineMonitor: the original drove an
Ebiten overlay and juggled several simultaneously running multi-chip CPUs
with freeze/resume goroutines. This core is one synchronous CPU driven
from a line-oriented REPL over stdin/stdout, so the monitor shrinks to a
command table over a single cpuAdapter plus the optional Lua script and
clipboard integrations.
*/

package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MachineMonitor is the interactive debugger's state: the CPU it drives,
// an optional soft-breakpoint script, and the terminal it talks to.
type MachineMonitor struct {
	cpu    *CPU
	adapt  DebuggableCPU
	script *scriptEngine
	tty    *TTYHost // nil when stdin isn't a real terminal
	out    io.Writer
}

// NewMachineMonitor wraps a CPU for interactive debugging.
func NewMachineMonitor(cpu *CPU, out io.Writer) *MachineMonitor {
	return &MachineMonitor{cpu: cpu, adapt: newCPUAdapter(cpu), out: out}
}

// AttachScript loads a Lua soft-breakpoint script, replacing any
// previously loaded one.
func (m *MachineMonitor) AttachScript(path string) error {
	if m.script != nil {
		m.script.Close()
	}
	s := newScriptEngine(m.cpu)
	if err := s.LoadFile(path); err != nil {
		return err
	}
	m.script = s
	return nil
}

// AttachTTY gives the monitor a raw-mode terminal: Run reads input a byte
// at a time instead of through a bufio.Scanner, and the regs command wraps
// its table to the terminal's width.
func (m *MachineMonitor) AttachTTY(tty *TTYHost) {
	m.tty = tty
}

// Run reads commands from in, one per line, until "quit" or EOF. With no
// attached TTYHost (the non-interactive/test path) a bufio.Scanner reads
// whole lines directly. With one attached, stdin is in raw mode and the
// terminal's own line editing is gone, so runRaw assembles lines itself.
func (m *MachineMonitor) Run(in io.Reader) {
	fmt.Fprintln(m.out, "MACHINE MONITOR - Type help for commands")
	if m.tty != nil {
		m.runRaw(in)
		return
	}
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(m.out, "(psxcore) ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m.dispatch(line) {
			return
		}
	}
}

// dispatch runs one already-trimmed command line and reports whether the
// monitor should exit.
func (m *MachineMonitor) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	if cmd == "quit" || cmd == "exit" {
		return true
	}
	if handler, ok := monitorCommands[cmd]; ok {
		fmt.Fprintln(m.out, handler(m, args))
	} else {
		fmt.Fprintf(m.out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

// runRaw assembles lines from in one byte at a time, echoing each
// character to out and handling backspace, the same CR->LF and DEL->BS
// translation terminal_host.go applies for the guest TTY, since raw mode
// disables the terminal's own echo and line editing.
func (m *MachineMonitor) runRaw(in io.Reader) {
	var line []byte
	buf := make([]byte, 1)
	fmt.Fprint(m.out, "(psxcore) ")
	for {
		n, err := in.Read(buf)
		if n > 0 {
			b := buf[0]
			switch {
			case b == '\r':
				b = '\n'
			case b == 0x7F:
				b = 0x08
			}
			switch b {
			case '\n':
				fmt.Fprintln(m.out)
				text := strings.TrimSpace(string(line))
				line = line[:0]
				if text != "" && m.dispatch(text) {
					return
				}
				fmt.Fprint(m.out, "(psxcore) ")
			case 0x08:
				if len(line) > 0 {
					line = line[:len(line)-1]
					fmt.Fprint(m.out, "\b \b")
				}
			default:
				line = append(line, b)
				m.out.Write([]byte{b})
			}
		}
		if err != nil {
			return
		}
	}
}

// RunUntilBreakOrScript steps the CPU until either a registered breakpoint
// address or the attached script's soft breakpoint fires, then returns.
func (m *MachineMonitor) RunUntilBreakOrScript(maxSteps int) (stopped bool, reason string) {
	for i := 0; i < maxSteps; i++ {
		m.cpu.Step()
		if m.adapt.HasBreakpoint(m.cpu.Regs.pc) {
			return true, fmt.Sprintf("breakpoint at %#08x", m.cpu.Regs.pc)
		}
		if m.script != nil {
			if hit, at := m.script.Check(); hit {
				return true, fmt.Sprintf("script breakpoint at %#08x", at)
			}
		}
	}
	return false, ""
}
