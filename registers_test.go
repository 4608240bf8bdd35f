package core

import "testing"

func TestRegistersResetState(t *testing.T) {
	var r Registers
	r.Reset()

	if r.Get(0) != 0 {
		t.Fatalf("r0 = %#x, want 0", r.Get(0))
	}
	for i := uint32(1); i < 32; i++ {
		if got := r.Get(i); got != regSentinel {
			t.Fatalf("r%d = %#x, want sentinel %#x", i, got, uint32(regSentinel))
		}
	}
	if r.hi != 0 || r.lo != 0 {
		t.Fatalf("hi/lo = %#x/%#x, want 0/0", r.hi, r.lo)
	}
	if r.pc != vecResetPC {
		t.Fatalf("pc = %#x, want reset vector %#x", r.pc, uint32(vecResetPC))
	}
	if r.nextPC != r.pc+4 {
		t.Fatalf("nextPC = %#x, want pc+4", r.nextPC)
	}
}

func TestSetIgnoresR0(t *testing.T) {
	var r Registers
	r.Reset()
	r.Set(0, 0x1234)
	if r.Get(0) != 0 {
		t.Fatalf("r0 = %#x, want 0 after attempted write", r.Get(0))
	}
}

func TestLoadDelayCommitSequence(t *testing.T) {
	var r Registers
	r.Reset()
	r.Set(5, 0xAAAA)

	r.QueueLoad(5, 0xBBBB)
	r.commit() // promotes the queued load to armed; it does not land yet
	if v, ok := r.PendingValue(5); !ok || v != 0xBBBB {
		t.Fatalf("PendingValue(5) = %#x,%v, want 0xBBBB,true", v, ok)
	}
	if got := r.Get(5); got != 0xAAAA {
		t.Fatalf("Get(5) before second commit = %#x, want unchanged 0xAAAA", got)
	}

	r.commit()
	if got := r.Get(5); got != 0xBBBB {
		t.Fatalf("Get(5) after second commit = %#x, want 0xBBBB", got)
	}
	if _, ok := r.PendingValue(5); ok {
		t.Fatalf("PendingValue(5) still valid after second commit")
	}
}

func TestQueueLoadToR0IsDiscardedOnCommit(t *testing.T) {
	var r Registers
	r.Reset()
	r.QueueLoad(0, 0xFFFFFFFF)
	r.commit() // promote to armed
	r.commit() // apply armed: the r0 target is discarded
	if r.Get(0) != 0 {
		t.Fatalf("r0 = %#x, want 0 even after a queued load targeting it", r.Get(0))
	}
}

func TestAdvancePCShiftsTriplet(t *testing.T) {
	var r Registers
	r.Reset()
	r.pc = 0x8000_0100
	r.nextPC = 0x8000_0104

	r.advancePC()

	if r.currPC != 0x8000_0100 {
		t.Fatalf("currPC = %#x, want 0x80000100", r.currPC)
	}
	if r.pc != 0x8000_0104 {
		t.Fatalf("pc = %#x, want 0x80000104", r.pc)
	}
	if r.nextPC != 0x8000_0108 {
		t.Fatalf("nextPC = %#x, want 0x80000108", r.nextPC)
	}
}
