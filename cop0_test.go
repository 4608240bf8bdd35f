package core

import "testing"

func TestCacheIsolationBit(t *testing.T) {
	var c COP0
	if c.IsCacheIsolated() {
		t.Fatal("fresh COP0 should not report cache isolation")
	}
	c.sr = srCacheIsolated
	if !c.IsCacheIsolated() {
		t.Fatal("sr bit 16 set, IsCacheIsolated() should report true")
	}
}

func TestBootExceptionVectorSelection(t *testing.T) {
	var c COP0
	if got := c.Enter(excSyscall, 0x8000_0100, false); got != vecException {
		t.Fatalf("vector = %#x, want RAM vector %#x", got, uint32(vecException))
	}

	c.sr |= srBootExceptionVec
	if got := c.Enter(excSyscall, 0x8000_0100, false); got != vecBootExc {
		t.Fatalf("vector = %#x, want BIOS vector %#x", got, uint32(vecBootExc))
	}
}

func TestEnterInDelaySlotBacksUpEPC(t *testing.T) {
	var c COP0
	c.Enter(excOverflow, 0x8000_0200, true)
	if c.epc != 0x8000_01FC {
		t.Fatalf("epc = %#x, want currPC-4 = 0x800001fc", c.epc)
	}
	if c.cause&causeBranchDelay == 0 {
		t.Fatal("cause branch-delay bit should be set")
	}
}

func TestEnterPushesKUIEStack(t *testing.T) {
	var c COP0
	c.sr = 0b0000_0001 // interrupt-enable current bit set, rest clear
	c.Enter(excSyscall, 0x8000_0000, false)
	// the old (IEc,KUc) pair shifts into (IEp,KUp); current pair clears.
	if c.sr&0x3F != 0b0000_0100 {
		t.Fatalf("sr stack = %#06b, want 0b000100", c.sr&0x3F)
	}
}

func TestRFEPopsKUIEStack(t *testing.T) {
	var c COP0
	c.sr = 0b0010_1001
	c.RFE()
	if c.sr&0x3F != 0b0000_1010 {
		t.Fatalf("sr stack after RFE = %#06b, want 0b001010", c.sr&0x3F)
	}
}

func TestWriteRejectsNonZeroDebugRegister(t *testing.T) {
	var c COP0
	if err := c.Write(cop0RegBPC, 0x1234); err == nil {
		t.Fatal("non-zero write to BPC should return an error")
	}
	if err := c.Write(cop0RegBPC, 0); err != nil {
		t.Fatalf("zero write to BPC should be accepted, got %v", err)
	}
}

func TestWriteRejectsNonZeroDCIC(t *testing.T) {
	var c COP0
	if err := c.Write(cop0RegDCIC, 1); err == nil {
		t.Fatal("non-zero write to DCIC should return an error")
	}
	if err := c.Write(cop0RegDCIC, 0); err != nil {
		t.Fatalf("zero write to DCIC should be accepted, got %v", err)
	}
}

func TestReadWriteBackedRegisters(t *testing.T) {
	var c COP0
	if err := c.Write(cop0RegSR, 0xABCD); err != nil {
		t.Fatalf("Write(sr) error: %v", err)
	}
	if got := c.Read(cop0RegSR); got != 0xABCD {
		t.Fatalf("Read(sr) = %#x, want 0xABCD", got)
	}
	if got := c.Read(cop0RegBDA); got != 0 {
		t.Fatalf("Read(unbacked) = %#x, want 0", got)
	}
}
