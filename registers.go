// registers.go - General-purpose register file, HI/LO, PC triplet and load-delay queue

package core

import "fmt"

// loadDelaySlot is one (register, value) writeback queued by a load
// instruction, held either in pending (just queued) or armed (about to
// land) form — see Registers.armed/pending.
type loadDelaySlot struct {
	reg   uint32
	value uint32
	valid bool
}

// Registers holds everything about the CPU's programmer-visible state except
// COP0 and memory: the 32 GPRs, HI/LO, the three-deep PC pipeline, the
// load-delay queue and the branch-delay flag.
type Registers struct {
	gpr [32]uint32
	hi  uint32
	lo  uint32

	currPC uint32
	pc     uint32
	nextPC uint32

	inDelaySlot bool

	// The load-delay pipeline is two-stage: a load queues its writeback into
	// pending, which is only a candidate for commit. At the start of the
	// following Step, pending is promoted into armed (becoming visible to
	// LWL/LWR chaining on the same register) and only THEN, one Step later
	// still, does commit() apply armed to the register file. This is what
	// gives a load exactly one instruction of delay before an ordinary
	// register read observes it, while still letting a chained LWL+LWR pair
	// on the same register see each other's in-flight result immediately.
	armed   loadDelaySlot
	pending loadDelaySlot
}

// Reset puts the register file into the documented power-on state: r0 is
// zero, r1..r31 hold a recognizable sentinel, HI/LO are zero, and pc starts
// at the BIOS entry point in KSEG1.
func (r *Registers) Reset() {
	for i := 1; i < 32; i++ {
		r.gpr[i] = regSentinel
	}
	r.gpr[0] = 0
	r.hi = 0
	r.lo = 0
	r.pc = vecResetPC
	r.nextPC = r.pc + 4
	r.currPC = 0
	r.inDelaySlot = false
	r.armed = loadDelaySlot{}
	r.pending = loadDelaySlot{}
}

// Get reads a general-purpose register. r0 always reads zero.
func (r *Registers) Get(i uint32) uint32 {
	return r.gpr[i&31]
}

// Set writes a general-purpose register immediately (not through the
// load-delay queue). Writes to r0 are discarded.
func (r *Registers) Set(i uint32, v uint32) {
	i &= 31
	if i == 0 {
		return
	}
	r.gpr[i] = v
}

// QueueLoad schedules v to land in register i two Steps from now: the next
// Step call promotes it to armed (visible to LWL/LWR chaining), and the
// Step after that commits it to the register file. Writes targeting r0 are
// still queued (so PendingValue/commit logic stays uniform) but commit()
// discards them, matching r0's read-as-zero contract.
func (r *Registers) QueueLoad(i uint32, v uint32) {
	r.pending = loadDelaySlot{reg: i & 31, value: v, valid: true}
}

// PendingValue returns the value armed for register i, if any. LWL/LWR use
// this to read the in-flight load for the same register instead of the
// register file, per the merge-shadowing rule: a load's result is promoted
// into armed one Step before it lands in the register file, which is
// exactly when a chained LWL/LWR on the same register needs to see it.
func (r *Registers) PendingValue(i uint32) (uint32, bool) {
	if r.armed.valid && r.armed.reg == i&31 {
		return r.armed.value, true
	}
	return 0, false
}

// commit applies the armed load-delay slot to the register file, then
// promotes this step's queued load into armed for the next call. Called at
// the start of every Step, before the current instruction is decoded, so an
// ordinary register read never observes a load's result until exactly one
// instruction after it retired.
func (r *Registers) commit() {
	if r.armed.valid && r.armed.reg != 0 {
		r.gpr[r.armed.reg] = r.armed.value
	}
	r.armed = r.pending
	r.pending = loadDelaySlot{}
}

// advancePC shifts the three-deep PC pipeline: curr <- pc, pc <- next,
// next <- next+4 (wrapping at 32 bits).
func (r *Registers) advancePC() {
	r.currPC = r.pc
	r.pc = r.nextPC
	r.nextPC += 4
}

func (r *Registers) String() string {
	return fmt.Sprintf("pc=%08x currPC=%08x nextPC=%08x hi=%08x lo=%08x", r.pc, r.currPC, r.nextPC, r.hi, r.lo)
}
