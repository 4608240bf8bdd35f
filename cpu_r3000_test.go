package core

import "testing"

// newTestCPU builds a CPU over a fresh MMU/memory image and starts it at
// RAM address 0 in KSEG0 (0x8000_0000) so tests can lay out small programs
// without touching the BIOS window.
func newTestCPU() *CPU {
	mem := &MemoryImage{}
	mmu := NewMMU(mem)
	cpu := NewCPU(mmu)
	cpu.Regs.pc = 0x8000_0000
	cpu.Regs.nextPC = cpu.Regs.pc + 4
	return cpu
}

func storeWord(cpu *CPU, addr, word uint32) {
	cpu.MMU.Write32(addr, word)
}

// encodeR builds an R-format instruction word.
func encodeR(opc, s, t, d, sh, fn uint32) uint32 {
	return opc<<26 | s<<21 | t<<16 | d<<11 | sh<<6 | fn
}

// encodeI builds an I-format instruction word.
func encodeI(opc, s, t, imm uint32) uint32 {
	return opc<<26 | s<<21 | t<<16 | (imm & 0xFFFF)
}

func TestR0AlwaysReadsZero(t *testing.T) {
	cpu := newTestCPU()
	cpu.Regs.Set(0, 0xDEADBEEF)
	if got := cpu.Regs.Get(0); got != 0 {
		t.Fatalf("r0 = %#x, want 0", got)
	}
}

func TestAddOverflowLeavesDestUnchanged(t *testing.T) {
	cpu := newTestCPU()
	cpu.Regs.Set(1, 0x7FFFFFFF)
	cpu.Regs.Set(2, 1)
	cpu.Regs.Set(3, 0x1234) // sentinel, should survive the overflow
	storeWord(cpu, 0x8000_0000, encodeR(opSPECIAL, 1, 2, 3, 0, fnADD))

	cpu.Step()

	if got := cpu.Regs.Get(3); got != 0x1234 {
		t.Fatalf("r3 = %#x, want unchanged 0x1234", got)
	}
	if excKind((cpu.COP0.cause&causeExcCodeMask)>>2) != excOverflow {
		t.Fatalf("cause code = %d, want Overflow", (cpu.COP0.cause&causeExcCodeMask)>>2)
	}
	if cpu.COP0.epc != 0x8000_0000 {
		t.Fatalf("epc = %#x, want %#x", cpu.COP0.epc, 0x8000_0000)
	}
	// The kernel/interrupt stack must have shifted left by 2.
	if cpu.COP0.sr&0x3F != 0 {
		t.Fatalf("sr stack = %#x, want 0 (was already 0 before shift)", cpu.COP0.sr&0x3F)
	}
}

func TestBranchDelaySlotExecutesBeforeTarget(t *testing.T) {
	cpu := newTestCPU()
	base := uint32(0x8000_1000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4

	// BEQ r0,r0,+2 (offset16=2 -> target 0x100C)
	storeWord(cpu, base, encodeI(opBEQ, 0, 0, 2))
	// delay slot: ORI r1,r0,0xAA
	storeWord(cpu, base+4, encodeI(opORI, 0, 1, 0xAA))
	// not-taken path (skipped): ORI r1,r0,0xBB
	storeWord(cpu, base+8, encodeI(opORI, 0, 1, 0xBB))

	cpu.Step() // executes BEQ, sets up delay slot
	cpu.Step() // executes delay slot (ORI r1,r0,0xAA)

	if got := cpu.Regs.Get(1); got != 0xAA {
		t.Fatalf("r1 = %#x, want 0xAA", got)
	}
	// currPC now holds the delay slot's address (base+4); the branch target
	// is the next instruction to execute, held in pc.
	if cpu.Regs.pc != base+0x0C {
		t.Fatalf("pc = %#x, want %#x", cpu.Regs.pc, base+0x0C)
	}
}

func TestLoadDelaySlotHidesPendingValue(t *testing.T) {
	cpu := newTestCPU()
	base := uint32(0x8000_2000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4
	cpu.Regs.Set(5, 0x1111_1111)

	storeWord(cpu, 0x0000_0100, 0xDEADBEEF)
	// LW r5, 0x100(r0)
	storeWord(cpu, base, encodeI(opLW, 0, 5, 0x100))
	// ADDIU r6,r5,0 -- reads r5 before the load lands
	storeWord(cpu, base+4, encodeI(opADDIU, 5, 6, 0))
	// ADDIU r7,r5,0 -- reads r5 after the load lands
	storeWord(cpu, base+8, encodeI(opADDIU, 5, 7, 0))

	cpu.Step() // LW
	cpu.Step() // ADDIU r6,r5,0 (pre-load value)
	cpu.Step() // ADDIU r7,r5,0 (post-load value)

	if got := cpu.Regs.Get(6); got != 0x1111_1111 {
		t.Fatalf("r6 = %#x, want prior r5 value 0x11111111", got)
	}
	if got := cpu.Regs.Get(7); got != 0xDEADBEEF {
		t.Fatalf("r7 = %#x, want 0xDEADBEEF", got)
	}
}

func TestLWLThenLWRMergesFullWord(t *testing.T) {
	cpu := newTestCPU()
	base := uint32(0x8000_3000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4
	cpu.Regs.Set(1, 0xAABBCCDD)

	storeWord(cpu, 0x10, 0x11223344)
	// LWL r1, 0x13(r0)
	storeWord(cpu, base, encodeI(opLWL, 0, 1, 0x13))
	// LWR r1, 0x10(r0)
	storeWord(cpu, base+4, encodeI(opLWR, 0, 1, 0x10))
	// trailing NOP-equivalent so the second load's delay commits
	storeWord(cpu, base+8, encodeI(opORI, 0, 0, 0))

	cpu.Step() // LWL
	cpu.Step() // LWR (reads LWL's pending value)
	cpu.Step() // commits LWR's result

	if got := cpu.Regs.Get(1); got != 0x11223344 {
		t.Fatalf("r1 = %#x, want 0x11223344", got)
	}
}

func TestSyscallVectorsToExceptionHandler(t *testing.T) {
	cpu := newTestCPU()
	base := uint32(0x8000_4000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4

	storeWord(cpu, base, encodeR(opSPECIAL, 0, 0, 0, 0, fnSYSCALL))
	cpu.Step()

	if cpu.Regs.pc != vecException {
		t.Fatalf("pc = %#x, want exception vector %#x", cpu.Regs.pc, uint32(vecException))
	}
	if cpu.COP0.epc != base {
		t.Fatalf("epc = %#x, want %#x", cpu.COP0.epc, base)
	}
	if code := (cpu.COP0.cause & causeExcCodeMask) >> 2; excKind(code) != excSyscall {
		t.Fatalf("cause code = %d, want Syscall(8)", code)
	}
}

func TestUnsignedDivisionByZero(t *testing.T) {
	cpu := newTestCPU()
	base := uint32(0x8000_5000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4
	cpu.Regs.Set(1, 7)
	cpu.Regs.Set(2, 0)

	storeWord(cpu, base, encodeR(opSPECIAL, 1, 2, 0, 0, fnDIVU))
	cpu.Step()

	if cpu.Regs.hi != 7 {
		t.Fatalf("hi = %#x, want 7", cpu.Regs.hi)
	}
	if cpu.Regs.lo != 0xFFFFFFFF {
		t.Fatalf("lo = %#x, want 0xFFFFFFFF", cpu.Regs.lo)
	}
}

func TestSignedDivisionEdgeCases(t *testing.T) {
	negFive := int32(-5)
	cases := []struct {
		name           string
		dividend       int32
		divisor        int32
		wantHi, wantLo uint32
	}{
		{"positive-dividend-div-zero", 5, 0, 5, 0xFFFFFFFF},
		{"negative-dividend-div-zero", negFive, 0, uint32(negFive), 1},
		{"int32-min-div-neg-one", -0x80000000, -1, 0, 0x80000000},
		{"ordinary", 7, 2, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cpu := newTestCPU()
			cpu.divSigned(tc.dividend, tc.divisor)
			if cpu.Regs.hi != tc.wantHi {
				t.Errorf("hi = %#x, want %#x", cpu.Regs.hi, tc.wantHi)
			}
			if cpu.Regs.lo != tc.wantLo {
				t.Errorf("lo = %#x, want %#x", cpu.Regs.lo, tc.wantLo)
			}
		})
	}
}

func TestMisalignedFetchRaisesIllegalLoad(t *testing.T) {
	cpu := newTestCPU()
	cpu.Regs.pc = 0x8000_6001
	cpu.Regs.nextPC = cpu.Regs.pc + 4

	cpu.Step()

	if code := (cpu.COP0.cause & causeExcCodeMask) >> 2; excKind(code) != excIllegalLoad {
		t.Fatalf("cause code = %d, want IllegalLoad(4)", code)
	}
}

func TestCacheIsolationDropsStore(t *testing.T) {
	cpu := newTestCPU()
	cpu.COP0.sr = srCacheIsolated
	base := uint32(0x8000_7000)
	cpu.Regs.pc = base
	cpu.Regs.nextPC = base + 4
	cpu.Regs.Set(1, 0x1234)

	storeWord(cpu, base, encodeI(opSW, 0, 1, 0x20))
	cpu.Step()

	if got := cpu.MMU.Read32(0x20); got != 0 {
		t.Fatalf("store under cache isolation should have been dropped, got %#x", got)
	}
}
