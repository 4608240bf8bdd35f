package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunProcessesLinesUntilQuit(t *testing.T) {
	mon := newTestMonitor()
	var out bytes.Buffer
	mon.out = &out

	mon.Run(strings.NewReader("help\nquit\n"))

	if !strings.Contains(out.String(), "commands:") {
		t.Fatalf("Run output missing help text: %q", out.String())
	}
}

func TestAttachTTYSwitchesRunToRawMode(t *testing.T) {
	mon := newTestMonitor()
	var out bytes.Buffer
	mon.out = &out
	mon.AttachTTY(&TTYHost{})

	mon.Run(strings.NewReader("help\r"))

	got := out.String()
	if !strings.Contains(got, "help") {
		t.Fatalf("runRaw should echo input bytes, got %q", got)
	}
	if !strings.Contains(got, "commands:") {
		t.Fatalf("runRaw should have dispatched help, got %q", got)
	}
}

func TestRunRawHandlesBackspace(t *testing.T) {
	mon := newTestMonitor()
	var out bytes.Buffer
	mon.out = &out
	mon.AttachTTY(&TTYHost{})

	// "helpx" with the trailing 'x' deleted via DEL (0x7F) before Enter.
	mon.Run(strings.NewReader("helpx\x7f\r"))

	if !strings.Contains(out.String(), "commands:") {
		t.Fatalf("backspace-corrected line should still dispatch help, got %q", out.String())
	}
}

func TestCmdRegsUsesAttachedTTYWidth(t *testing.T) {
	mon := newTestMonitor()
	mon.AttachTTY(&TTYHost{})

	out := cmdRegs(mon, nil)
	if !strings.Contains(out, "pc") {
		t.Fatalf("regs dump with attached TTY missing pc: %q", out)
	}
}
