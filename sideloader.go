// sideloader.go - EXE header parsing and BIOS-to-shell handoff sideload

package core

import "fmt"

const (
	exeHeaderSize   = 2048
	exeOffInitPC    = 0x10
	exeOffInitGP    = 0x14
	exeOffLoadAddr  = 0x18
	exeOffFileSize  = 0x1C
	exeOffInitSP    = 0x30
	shellHandoffPC  = 0x8003_0000
	ramOffsetMask   = 0x001F_FFFF
)

// exeHeader holds the fields of a sideloaded executable's header that this
// core cares about; everything else in the 2048-byte header is unused.
type exeHeader struct {
	initPC   uint32
	initGP   uint32
	loadAddr uint32
	fileSize uint32
	initSP   uint32
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// parseEXEHeader reads the fixed fields out of a sideload image's header.
func parseEXEHeader(data []byte) (exeHeader, error) {
	if len(data) < exeHeaderSize {
		return exeHeader{}, fmt.Errorf("sideloader: EXE image too short for header: got %d bytes, want at least %d", len(data), exeHeaderSize)
	}
	return exeHeader{
		initPC:   le32(data[exeOffInitPC:]),
		initGP:   le32(data[exeOffInitGP:]),
		loadAddr: le32(data[exeOffLoadAddr:]),
		fileSize: le32(data[exeOffFileSize:]),
		initSP:   le32(data[exeOffInitSP:]),
	}, nil
}

// Sideload runs the BIOS until it reaches the shell handoff address, then
// overlays the EXE payload into RAM and jumps to its entry point. There is
// no watchdog: a BIOS image that never reaches the handoff PC sideloads
// forever, mirroring the reference implementation's assumption.
func Sideload(cpu *CPU, mem *MemoryImage, exeData []byte) error {
	header, err := parseEXEHeader(exeData)
	if err != nil {
		return err
	}
	payload := exeData[exeHeaderSize:]
	if uint32(len(payload)) < header.fileSize {
		return fmt.Errorf("sideloader: EXE payload shorter than declared size: got %d bytes, want %d", len(payload), header.fileSize)
	}
	payload = payload[:header.fileSize]

	for cpu.Regs.pc != shellHandoffPC {
		cpu.Step()
	}

	ramOff := header.loadAddr & ramOffsetMask
	copy(mem.RAMBytes()[ramOff:], payload)

	cpu.Regs.Set(28, header.initGP)
	if header.initSP != 0 {
		cpu.Regs.Set(29, header.initSP)
		cpu.Regs.Set(30, header.initSP)
	}
	cpu.Regs.pc = header.initPC
	cpu.Regs.nextPC = header.initPC + 4
	return nil
}
