// debug_snapshot.go - Save/load machine state for the monitor's "save"/"load" commands

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

Trimmed from this project's MachineSnapshot: the original supports several
CPU widths and a generic "memSizeFromWidth" guess. This core has exactly
one memory size (2 MiB RAM) and one register set, so the snapshot is fixed
shape; gzip framing and the magic/version header are kept as-is.
*/

package core

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	snapshotMagic   = "PSXS"
	snapshotVersion = 1
)

// MachineSnapshot captures the GPRs, pc, hi and lo, the COP0 sr/cause/epc
// registers, and all of RAM. The pending load-delay writeback, the
// branch-delay flag and nextPC are not captured; restoring sets nextPC to
// pc+4.
type MachineSnapshot struct {
	Registers []RegisterInfo
	COP0      [3]uint32 // sr, cause, epc
	RAM       []byte
}

// TakeSnapshot captures the current CPU state.
func TakeSnapshot(cpu *CPU) *MachineSnapshot {
	a := newCPUAdapter(cpu)
	ram := make([]byte, len(cpu.MMU.mem.ram))
	copy(ram, cpu.MMU.mem.ram[:])
	return &MachineSnapshot{
		Registers: a.GetRegisters(),
		COP0:      [3]uint32{cpu.COP0.sr, cpu.COP0.cause, cpu.COP0.epc},
		RAM:       ram,
	}
}

// RestoreSnapshot writes a snapshot's state back into the CPU.
func RestoreSnapshot(cpu *CPU, snap *MachineSnapshot) {
	a := newCPUAdapter(cpu)
	for _, r := range snap.Registers {
		a.SetRegister(r.Name, r.Value)
	}
	cpu.COP0.sr, cpu.COP0.cause, cpu.COP0.epc = snap.COP0[0], snap.COP0[1], snap.COP0[2]
	copy(cpu.MMU.mem.ram[:], snap.RAM)
}

// SaveSnapshotToFile writes a snapshot to disk with gzip-compressed RAM.
func SaveSnapshotToFile(snap *MachineSnapshot, path string) error {
	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(snapshotVersion))

	binary.Write(&buf, binary.LittleEndian, uint32(len(snap.Registers)))
	for _, r := range snap.Registers {
		nameBytes := []byte(r.Name)
		buf.WriteByte(byte(len(nameBytes)))
		buf.Write(nameBytes)
		binary.Write(&buf, binary.LittleEndian, r.Value)
	}
	for _, v := range snap.COP0 {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	binary.Write(&buf, binary.LittleEndian, uint32(len(snap.RAM)))
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(snap.RAM); err != nil {
		return fmt.Errorf("compressing RAM: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip: %w", err)
	}
	buf.Write(compressed.Bytes())

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadSnapshotFromFile reads and decompresses a snapshot from disk.
func LoadSnapshotFromFile(path string) (*MachineSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != snapshotMagic {
		return nil, fmt.Errorf("invalid snapshot magic: %q", string(magic))
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	var regCount uint32
	if err := binary.Read(r, binary.LittleEndian, &regCount); err != nil {
		return nil, fmt.Errorf("reading register count: %w", err)
	}
	regs := make([]RegisterInfo, regCount)
	for i := range regCount {
		nameLen, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading register name length: %w", err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("reading register name: %w", err)
		}
		var value uint32
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return nil, fmt.Errorf("reading register value: %w", err)
		}
		regs[i] = RegisterInfo{Name: string(name), Value: value}
	}

	var cop0 [3]uint32
	for i := range cop0 {
		if err := binary.Read(r, binary.LittleEndian, &cop0[i]); err != nil {
			return nil, fmt.Errorf("reading cop0 register %d: %w", i, err)
		}
	}

	var ramLen uint32
	if err := binary.Read(r, binary.LittleEndian, &ramLen); err != nil {
		return nil, fmt.Errorf("reading RAM length: %w", err)
	}

	remaining := data[len(data)-r.Len():]
	gz, err := gzip.NewReader(bytes.NewReader(remaining))
	if err != nil {
		return nil, fmt.Errorf("opening gzip reader: %w", err)
	}
	defer gz.Close()

	ram := make([]byte, ramLen)
	if _, err := io.ReadFull(gz, ram); err != nil {
		return nil, fmt.Errorf("decompressing RAM: %w", err)
	}

	return &MachineSnapshot{Registers: regs, COP0: cop0, RAM: ram}, nil
}
