// debug_commands.go - Monitor command dispatch table

/*
Drastically trimmed from this project's original command dispatcher: that
version spanned freeze/thaw, watchpoints, memory hunt/compare/transfer and
multi-CPU trace-to-file across ~1800 lines for several simultaneous chip
types. A single synchronous MIPS CPU needs a much smaller surface:
registers, memory, stepping, breakpoints, the clipboard and the Lua
script hook.
*/

package core

import (
	"fmt"
	"strconv"
	"strings"

	"golang.design/x/clipboard"
)

// monitorCommands maps a command name to its handler. Each handler
// receives the monitor and the remaining words of the command line, and
// returns the text to print.
var monitorCommands = map[string]func(*MachineMonitor, []string) string{
	"help":  cmdHelp,
	"regs":  cmdRegs,
	"reg":   cmdReg,
	"mem":   cmdMem,
	"write": cmdWrite,
	"step":  cmdStep,
	"run":   cmdRun,
	"break": cmdBreak,
	"clear": cmdClear,
	"list":  cmdList,
	"io":    cmdIO,
	"where": cmdWhere,
	"bt":    cmdBacktrace,
	"clip":  cmdClip,
	"save":  cmdSave,
	"load":  cmdLoad,
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

func cmdHelp(m *MachineMonitor, args []string) string {
	names := make([]string, 0, len(monitorCommands))
	for name := range monitorCommands {
		names = append(names, name)
	}
	return "commands: " + strings.Join(names, ", ") + ", quit"
}

// cmdRegs dumps every register, packing as many "name = value" cells per
// line as the attached terminal's width allows (80 columns with no
// attached TTYHost, e.g. in tests or when output is redirected).
func cmdRegs(m *MachineMonitor, args []string) string {
	width := 80
	if m.tty != nil {
		width = m.tty.Width()
	}
	const cellWidth = 19 // "name = 0x12345678  "
	cols := max(1, width/cellWidth)

	regs := m.adapt.GetRegisters()
	var b strings.Builder
	for i := 0; i < len(regs); i += cols {
		end := min(i+cols, len(regs))
		for _, r := range regs[i:end] {
			fmt.Fprintf(&b, "%-4s = %#08x  ", r.Name, r.Value)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n", m.cpu.COP0.String())
	return b.String()
}

func cmdReg(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: reg <name> [value]"
	}
	if len(args) == 1 {
		v, ok := m.adapt.GetRegister(args[0])
		if !ok {
			return fmt.Sprintf("no such register %q", args[0])
		}
		return fmt.Sprintf("%s = %#08x", args[0], v)
	}
	v, err := parseAddr(args[1])
	if err != nil {
		return fmt.Sprintf("bad value %q", args[1])
	}
	if !m.adapt.SetRegister(args[0], v) {
		return fmt.Sprintf("no such register %q", args[0])
	}
	return fmt.Sprintf("%s = %#08x", args[0], v)
}

func cmdMem(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: mem <addr> [len]"
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return fmt.Sprintf("bad address %q", args[0])
	}
	length := 16
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			length = n
		}
	}
	data := m.adapt.ReadMemory(addr, length)
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := min(i+16, len(data))
		fmt.Fprintf(&b, "%#08x: % x\n", addr+uint32(i), data[i:end])
	}
	return b.String()
}

func cmdWrite(m *MachineMonitor, args []string) string {
	if len(args) < 2 {
		return "usage: write <addr> <byte...>"
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return fmt.Sprintf("bad address %q", args[0])
	}
	data := make([]byte, 0, len(args)-1)
	for _, tok := range args[1:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(tok, "0x"), 16, 8)
		if err != nil {
			return fmt.Sprintf("bad byte %q", tok)
		}
		data = append(data, byte(v))
	}
	m.adapt.WriteMemory(addr, data)
	return fmt.Sprintf("wrote %d byte(s) at %#08x", len(data), addr)
}

func cmdStep(m *MachineMonitor, args []string) string {
	n := 1
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			n = v
		}
	}
	for i := 0; i < n; i++ {
		m.cpu.Step()
	}
	return fmt.Sprintf("pc = %#08x", m.cpu.Regs.pc)
}

func cmdRun(m *MachineMonitor, args []string) string {
	max := 10_000_000
	stopped, reason := m.RunUntilBreakOrScript(max)
	if stopped {
		return "stopped: " + reason
	}
	return fmt.Sprintf("ran %d steps without hitting a breakpoint", max)
}

func cmdBreak(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: break <addr>"
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return fmt.Sprintf("bad address %q", args[0])
	}
	m.adapt.SetBreakpoint(addr)
	return fmt.Sprintf("breakpoint set at %#08x", addr)
}

func cmdClear(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		m.adapt.ClearAllBreakpoints()
		return "all breakpoints cleared"
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return fmt.Sprintf("bad address %q", args[0])
	}
	m.adapt.ClearBreakpoint(addr)
	return fmt.Sprintf("breakpoint cleared at %#08x", addr)
}

func cmdList(m *MachineMonitor, args []string) string {
	bps := m.adapt.ListBreakpoints()
	if len(bps) == 0 {
		return "no breakpoints set"
	}
	var b strings.Builder
	for _, addr := range bps {
		fmt.Fprintf(&b, "%#08x\n", addr)
	}
	return b.String()
}

func cmdIO(m *MachineMonitor, args []string) string {
	return formatIOView()
}

func cmdWhere(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: where <addr>"
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return fmt.Sprintf("bad address %q", args[0])
	}
	return describeAddress(translate(addr))
}

func cmdBacktrace(m *MachineMonitor, args []string) string {
	calls := m.cpu.calls.recent()
	if len(calls) == 0 {
		return "no recorded calls"
	}
	var b strings.Builder
	for _, e := range calls {
		fmt.Fprintf(&b, "%#08x -> %#08x\n", e.from, e.to)
	}
	return b.String()
}

// cmdClip copies the current register dump to the host clipboard, the
// same clipboard.Init/Write(FmtText, ...) shape this project's Ebiten
// video backend uses for its copy feature.
func cmdClip(m *MachineMonitor, args []string) string {
	if err := clipboard.Init(); err != nil {
		return fmt.Sprintf("clip: clipboard unavailable: %v", err)
	}
	text := cmdRegs(m, nil)
	clipboard.Write(clipboard.FmtText, []byte(text))
	return "register dump copied to clipboard"
}

func cmdSave(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: save <path>"
	}
	snap := TakeSnapshot(m.cpu)
	if err := SaveSnapshotToFile(snap, args[0]); err != nil {
		return fmt.Sprintf("save failed: %v", err)
	}
	return "saved " + args[0]
}

func cmdLoad(m *MachineMonitor, args []string) string {
	if len(args) < 1 {
		return "usage: load <path>"
	}
	snap, err := LoadSnapshotFromFile(args[0])
	if err != nil {
		return fmt.Sprintf("load failed: %v", err)
	}
	RestoreSnapshot(m.cpu, snap)
	return "loaded " + args[0]
}
