// main.go - CLI entry point: flag parsing, boot sequence, step loop

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

Follows the teacher's cmd/ tool: flag-based configuration, no cobra/viper,
a tight step loop with no built-in timing model (mirroring original_source's
main.rs, which calls step() with no throttling of its own).
*/

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	core "github.com/intuitionamiga/psxcore"
)

func main() {
	biosPath := flag.String("bios", "", "path to a 512KiB BIOS image (required)")
	exePath := flag.String("exe", "", "optional sideloaded EXE to run after BIOS boot")
	trace := flag.Bool("trace", false, "log one line per retired instruction to stderr")
	monitor := flag.Bool("monitor", false, "drop into the interactive debug monitor instead of free-running")
	script := flag.String("script", "", "optional Lua soft-breakpoint script")
	flag.Parse()

	if *biosPath == "" {
		fmt.Fprintln(os.Stderr, "psxcore: -bios is required")
		os.Exit(1)
	}

	biosData, err := os.ReadFile(*biosPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psxcore: reading BIOS: %v\n", err)
		os.Exit(1)
	}

	mem := &core.MemoryImage{}
	mem.Reset()
	if err := mem.LoadBIOS(biosData); err != nil {
		fmt.Fprintf(os.Stderr, "psxcore: %v\n", err)
		os.Exit(1)
	}

	mmu := core.NewMMU(mem)
	cpu := core.NewCPU(mmu)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if *trace {
		cpu.Trace = func(pc uint32, word uint32) {
			fmt.Fprintf(os.Stderr, "pc=%08x word=%08x\n", pc, word)
		}
	}

	if *exePath != "" {
		exeData, err := os.ReadFile(*exePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "psxcore: reading EXE: %v\n", err)
			os.Exit(1)
		}
		if err := core.Sideload(cpu, mem, exeData); err != nil {
			fmt.Fprintf(os.Stderr, "psxcore: %v\n", err)
			os.Exit(1)
		}
	}

	if *monitor {
		mon := core.NewMachineMonitor(cpu, os.Stdout)
		if *script != "" {
			if err := mon.AttachScript(*script); err != nil {
				fmt.Fprintf(os.Stderr, "psxcore: %v\n", err)
				os.Exit(1)
			}
		}
		stdinFd := int(os.Stdin.Fd())
		if term.IsTerminal(stdinFd) {
			tty, err := core.NewTTYHost(stdinFd)
			if err != nil {
				fmt.Fprintf(os.Stderr, "psxcore: %v\n", err)
				os.Exit(1)
			}
			defer tty.Restore()
			mon.AttachTTY(tty)
		}
		mon.Run(os.Stdin)
		return
	}

	for {
		cpu.Step()
		core.CheckPutchar(cpu, out)
	}
}
