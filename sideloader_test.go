package core

import "testing"

func buildTestEXE(initPC, initGP, loadAddr, initSP uint32, payload []byte) []byte {
	header := make([]byte, exeHeaderSize)
	putLE32 := func(off int, v uint32) {
		header[off] = byte(v)
		header[off+1] = byte(v >> 8)
		header[off+2] = byte(v >> 16)
		header[off+3] = byte(v >> 24)
	}
	putLE32(exeOffInitPC, initPC)
	putLE32(exeOffInitGP, initGP)
	putLE32(exeOffLoadAddr, loadAddr)
	putLE32(exeOffFileSize, uint32(len(payload)))
	putLE32(exeOffInitSP, initSP)
	return append(header, payload...)
}

func TestSideloadOverlaysRAMAndJumps(t *testing.T) {
	mem := &MemoryImage{}
	mem.Reset()
	mmu := NewMMU(mem)
	cpu := NewCPU(mmu)
	cpu.Regs.pc = shellHandoffPC
	cpu.Regs.nextPC = shellHandoffPC + 4

	// Seed the handoff address with a harmless instruction so the pre-jump
	// Step loop in Sideload, if it ever ran, wouldn't fault; here it
	// shouldn't run at all because pc already equals the handoff address.
	storeWord(cpu, shellHandoffPC, encodeI(opORI, 0, 0, 0))

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	exe := buildTestEXE(0x8001_0000, 0x8003_0000, 0x8001_0000, 0x801F_FFF0, payload)

	if err := Sideload(cpu, mem, exe); err != nil {
		t.Fatalf("Sideload: %v", err)
	}

	if got := mmu.Read32(0x8001_0000); got != 0xEFBEADDE {
		t.Fatalf("overlaid RAM word = %#x, want 0xefbeadde", got)
	}
	if cpu.Regs.pc != 0x8001_0000 {
		t.Fatalf("pc = %#x, want EXE entry point 0x80010000", cpu.Regs.pc)
	}
	if cpu.Regs.Get(28) != 0x8003_0000 {
		t.Fatalf("gp = %#x, want 0x80030000", cpu.Regs.Get(28))
	}
	if cpu.Regs.Get(29) != 0x801F_FFF0 || cpu.Regs.Get(30) != 0x801F_FFF0 {
		t.Fatalf("sp/fp = %#x/%#x, want 0x801ffff0", cpu.Regs.Get(29), cpu.Regs.Get(30))
	}
}

func TestParseEXEHeaderRejectsShortImage(t *testing.T) {
	if _, err := parseEXEHeader(make([]byte, exeHeaderSize-1)); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestSideloadRejectsShortPayload(t *testing.T) {
	mem := &MemoryImage{}
	mem.Reset()
	mmu := NewMMU(mem)
	cpu := NewCPU(mmu)
	cpu.Regs.pc = shellHandoffPC
	cpu.Regs.nextPC = shellHandoffPC + 4

	exe := buildTestEXE(0x8001_0000, 0, 0x8001_0000, 0, nil)
	// Declare a file size larger than what's actually present.
	exe[exeOffFileSize] = 0xFF
	exe[exeOffFileSize+1] = 0xFF

	if err := Sideload(cpu, mem, exe); err == nil {
		t.Fatal("expected an error when the payload is shorter than the declared size")
	}
}
