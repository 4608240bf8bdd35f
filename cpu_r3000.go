// cpu_r3000.go - Instruction interpreter: decode, dispatch and execution

package core

import "fmt"

// CPU ties together the register file, COP0 and the address decoder and
// drives one instruction retirement per Step call.
type CPU struct {
	Regs Registers
	COP0 COP0
	MMU  *MMU

	// Trace, when non-nil, receives one line per retired instruction.
	// Left nil in the hot path so tests and headless runs pay nothing for it.
	Trace func(pc uint32, word uint32)

	calls callTrace
}

// NewCPU builds a CPU around the given decoder and resets it to the
// documented power-on state.
func NewCPU(mmu *MMU) *CPU {
	c := &CPU{MMU: mmu}
	c.Reset()
	return c
}

// Reset puts registers and COP0 into their power-on state.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.COP0 = COP0{}
}

// Step retires exactly one instruction: commit the pending load-delay
// writeback, advance the PC triplet, fetch, decode and execute.
func (c *CPU) Step() {
	c.Regs.commit()
	c.Regs.advancePC()

	if c.Regs.currPC&3 != 0 {
		c.raise(excIllegalLoad)
		return
	}

	word := c.MMU.Read32(c.Regs.currPC)
	if c.Trace != nil {
		c.Trace(c.Regs.currPC, word)
	}

	wasDelaySlot := c.Regs.inDelaySlot
	c.execute(word)
	if wasDelaySlot {
		c.Regs.inDelaySlot = false
	}
}

// raise delivers an architectural exception: COP0 mutates its own state and
// hands back the vector PC, which becomes the next fetch target.
func (c *CPU) raise(kind excKind) {
	vector := c.COP0.Enter(kind, c.Regs.currPC, c.Regs.inDelaySlot)
	c.Regs.pc = vector
	c.Regs.nextPC = vector + 4
}

// Instruction field extraction, per the fixed MIPS-I bit layout.
func opcode(w uint32) uint32 { return w >> 26 }
func rs(w uint32) uint32     { return (w >> 21) & 0x1F }
func rt(w uint32) uint32     { return (w >> 16) & 0x1F }
func rd(w uint32) uint32     { return (w >> 11) & 0x1F }
func shamt(w uint32) uint32  { return (w >> 6) & 0x1F }
func funct(w uint32) uint32  { return w & 0x3F }
func imm16(w uint32) uint32  { return w & 0xFFFF }
func imm26(w uint32) uint32  { return w & 0x03FFFFFF }

func signExtend16(v uint32) uint32 { return uint32(int32(int16(v))) }
func offset16(w uint32) uint32     { return signExtend16(imm16(w)) << 2 }
func offset26(w uint32) uint32     { return imm26(w) << 2 }

func (c *CPU) execute(word uint32) {
	switch opcode(word) {
	case opSPECIAL:
		c.execSpecial(word)
	case opREGIMM:
		c.execRegimm(word)
	case opJ:
		target := (c.Regs.pc & 0xF000_0000) | offset26(word)
		c.Regs.nextPC = target
		c.Regs.inDelaySlot = true
	case opJAL:
		target := (c.Regs.pc & 0xF000_0000) | offset26(word)
		c.Regs.Set(31, c.Regs.nextPC)
		c.Regs.nextPC = target
		c.Regs.inDelaySlot = true
		c.calls.record(c.Regs.currPC, target)
	case opBEQ:
		c.branch(word, c.Regs.Get(rs(word)) == c.Regs.Get(rt(word)))
	case opBNE:
		c.branch(word, c.Regs.Get(rs(word)) != c.Regs.Get(rt(word)))
	case opBLEZ:
		c.branch(word, int32(c.Regs.Get(rs(word))) <= 0)
	case opBGTZ:
		c.branch(word, int32(c.Regs.Get(rs(word))) > 0)
	case opADDI:
		c.execAddSigned(rt(word), int32(c.Regs.Get(rs(word))), int32(signExtend16(imm16(word))))
	case opADDIU:
		c.Regs.Set(rt(word), c.Regs.Get(rs(word))+signExtend16(imm16(word)))
	case opSLTI:
		c.Regs.Set(rt(word), boolToWord(int32(c.Regs.Get(rs(word))) < int32(signExtend16(imm16(word)))))
	case opSLTIU:
		c.Regs.Set(rt(word), boolToWord(c.Regs.Get(rs(word)) < signExtend16(imm16(word))))
	case opANDI:
		c.Regs.Set(rt(word), c.Regs.Get(rs(word))&imm16(word))
	case opORI:
		c.Regs.Set(rt(word), c.Regs.Get(rs(word))|imm16(word))
	case opXORI:
		c.Regs.Set(rt(word), c.Regs.Get(rs(word))^imm16(word))
	case opLUI:
		c.Regs.Set(rt(word), imm16(word)<<16)
	case opCOP0:
		c.execCop0(word)
	case opCOP1, opCOP3:
		c.raise(excCopError)
	case opCOP2:
		panic(fmt.Sprintf("cpu: unimplemented coprocessor 2 access at pc=%#08x", c.Regs.currPC))
	case opLB:
		c.load(word, sizeByte, true)
	case opLH:
		c.load(word, sizeHalf, true)
	case opLWL:
		c.loadUnaligned(word, true)
	case opLW:
		c.load(word, sizeWord, true)
	case opLBU:
		c.load(word, sizeByte, false)
	case opLHU:
		c.load(word, sizeHalf, false)
	case opLWR:
		c.loadUnaligned(word, false)
	case opSB:
		c.store(word, sizeByte)
	case opSH:
		c.store(word, sizeHalf)
	case opSWL:
		c.storeUnaligned(word, true)
	case opSW:
		c.store(word, sizeWord)
	case opSWR:
		c.storeUnaligned(word, false)
	default:
		c.raise(excIllegalInstr)
	}
}

// branch computes the conditional-branch target and always marks the delay
// slot, whether or not the branch is taken (§4.1).
func (c *CPU) branch(word uint32, taken bool) {
	c.Regs.inDelaySlot = true
	if taken {
		c.Regs.nextPC = (c.Regs.nextPC - 4) + offset16(word)
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// execAddSigned implements ADD/ADDI's overflow-checked signed add: on
// overflow, an Overflow exception is raised and rd is left untouched.
func (c *CPU) execAddSigned(dest uint32, a, b int32) {
	sum := a + b
	overflow := (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0)
	if overflow {
		c.raise(excOverflow)
		return
	}
	c.Regs.Set(dest, uint32(sum))
}

func (c *CPU) execSpecial(word uint32) {
	s, t, d := rs(word), rt(word), rd(word)
	switch funct(word) {
	case fnSLL:
		c.Regs.Set(d, c.Regs.Get(t)<<shamt(word))
	case fnSRL:
		c.Regs.Set(d, c.Regs.Get(t)>>shamt(word))
	case fnSRA:
		c.Regs.Set(d, uint32(int32(c.Regs.Get(t))>>shamt(word)))
	case fnSLLV:
		c.Regs.Set(d, c.Regs.Get(t)<<(c.Regs.Get(s)&0x1F))
	case fnSRLV:
		c.Regs.Set(d, c.Regs.Get(t)>>(c.Regs.Get(s)&0x1F))
	case fnSRAV:
		c.Regs.Set(d, uint32(int32(c.Regs.Get(t))>>(c.Regs.Get(s)&0x1F)))
	case fnJR:
		c.Regs.nextPC = c.Regs.Get(s)
		c.Regs.inDelaySlot = true
	case fnJALR:
		target := c.Regs.Get(s)
		link := d
		if link == 0 {
			link = 31
		}
		c.Regs.Set(link, c.Regs.nextPC)
		c.Regs.nextPC = target
		c.Regs.inDelaySlot = true
		c.calls.record(c.Regs.currPC, target)
	case fnSYSCALL:
		c.raise(excSyscall)
	case fnBREAK:
		c.raise(excBreak)
	case fnMFHI:
		c.Regs.Set(d, c.Regs.hi)
	case fnMTHI:
		c.Regs.hi = c.Regs.Get(s)
	case fnMFLO:
		c.Regs.Set(d, c.Regs.lo)
	case fnMTLO:
		c.Regs.lo = c.Regs.Get(s)
	case fnMULT:
		product := int64(int32(c.Regs.Get(s))) * int64(int32(c.Regs.Get(t)))
		c.Regs.hi = uint32(uint64(product) >> 32)
		c.Regs.lo = uint32(product)
	case fnMULTU:
		product := uint64(c.Regs.Get(s)) * uint64(c.Regs.Get(t))
		c.Regs.hi = uint32(product >> 32)
		c.Regs.lo = uint32(product)
	case fnDIV:
		c.divSigned(int32(c.Regs.Get(s)), int32(c.Regs.Get(t)))
	case fnDIVU:
		c.divUnsigned(c.Regs.Get(s), c.Regs.Get(t))
	case fnADD:
		c.execAddSigned(d, int32(c.Regs.Get(s)), int32(c.Regs.Get(t)))
	case fnADDU:
		c.Regs.Set(d, c.Regs.Get(s)+c.Regs.Get(t))
	case fnSUB:
		a, b := int32(c.Regs.Get(s)), int32(c.Regs.Get(t))
		diff := a - b
		if (a >= 0) != (b >= 0) && (diff >= 0) != (a >= 0) {
			c.raise(excOverflow)
		} else {
			c.Regs.Set(d, uint32(diff))
		}
	case fnSUBU:
		c.Regs.Set(d, c.Regs.Get(s)-c.Regs.Get(t))
	case fnAND:
		c.Regs.Set(d, c.Regs.Get(s)&c.Regs.Get(t))
	case fnOR:
		c.Regs.Set(d, c.Regs.Get(s)|c.Regs.Get(t))
	case fnXOR:
		c.Regs.Set(d, c.Regs.Get(s)^c.Regs.Get(t))
	case fnNOR:
		c.Regs.Set(d, ^(c.Regs.Get(s) | c.Regs.Get(t)))
	case fnSLT:
		c.Regs.Set(d, boolToWord(int32(c.Regs.Get(s)) < int32(c.Regs.Get(t))))
	case fnSLTU:
		c.Regs.Set(d, boolToWord(c.Regs.Get(s) < c.Regs.Get(t)))
	default:
		c.raise(excIllegalInstr)
	}
}

// divSigned implements the signed-division edge-case table (§4.1): division
// by zero and the INT32_MIN / -1 overflow both produce fixed HI/LO results
// instead of trapping, matching the R3000A's lack of a divide exception.
func (c *CPU) divSigned(dividend, divisor int32) {
	switch {
	case divisor == 0:
		c.Regs.hi = uint32(dividend)
		if dividend >= 0 {
			c.Regs.lo = 0xFFFFFFFF
		} else {
			c.Regs.lo = 1
		}
	case dividend == -0x80000000 && divisor == -1:
		c.Regs.hi = 0
		c.Regs.lo = 0x80000000
	default:
		c.Regs.hi = uint32(dividend % divisor)
		c.Regs.lo = uint32(dividend / divisor)
	}
}

func (c *CPU) divUnsigned(dividend, divisor uint32) {
	if divisor == 0 {
		c.Regs.hi = dividend
		c.Regs.lo = 0xFFFFFFFF
		return
	}
	c.Regs.hi = dividend % divisor
	c.Regs.lo = dividend / divisor
}

func (c *CPU) execRegimm(word uint32) {
	s := rs(word)
	t := rt(word)
	link := t&0x10 != 0
	isGez := t&0x01 != 0

	if link {
		c.Regs.Set(31, c.Regs.nextPC)
	}

	cond := int32(c.Regs.Get(s)) < 0
	if isGez {
		cond = !cond
	}
	c.branch(word, cond)
}

func (c *CPU) execCop0(word uint32) {
	switch rs(word) {
	case cop0MFC0:
		c.Regs.QueueLoad(rt(word), c.COP0.Read(rd(word)))
	case cop0MTC0:
		if err := c.COP0.Write(rd(word), c.Regs.Get(rt(word))); err != nil {
			panic(err)
		}
	case cop0RFE:
		c.COP0.RFE()
	default:
		c.raise(excIllegalInstr)
	}
}

func zeroExtend(v uint32, size int) uint32 {
	switch size {
	case sizeByte:
		return v & 0xFF
	case sizeHalf:
		return v & 0xFFFF
	default:
		return v
	}
}

func signExtendSized(v uint32, size int) uint32 {
	switch size {
	case sizeByte:
		return uint32(int32(int8(v)))
	case sizeHalf:
		return uint32(int32(int16(v)))
	default:
		return v
	}
}

// load handles LB/LBU/LH/LHU/LW: alignment check (except byte loads),
// cache-isolation drop, and the raw MMU read, queued onto the load-delay
// slot rather than written immediately.
func (c *CPU) load(word uint32, size int, signed bool) {
	addr := c.Regs.Get(rs(word)) + signExtend16(imm16(word))

	if size != sizeByte {
		align := uint32(size - 1)
		if addr&align != 0 {
			c.raise(excIllegalLoad)
			return
		}
	}

	if c.COP0.IsCacheIsolated() {
		return
	}

	var raw uint32
	switch size {
	case sizeByte:
		raw = c.MMU.Read8(addr)
	case sizeHalf:
		raw = c.MMU.Read16(addr)
	default:
		raw = c.MMU.Read32(addr)
	}

	var value uint32
	if signed {
		value = signExtendSized(raw, size)
	} else {
		value = zeroExtend(raw, size)
	}
	c.Regs.QueueLoad(rt(word), value)
}

// store handles SB/SH/SW: alignment check (except byte stores) and
// cache-isolation drop.
func (c *CPU) store(word uint32, size int) {
	addr := c.Regs.Get(rs(word)) + signExtend16(imm16(word))

	if size != sizeByte {
		align := uint32(size - 1)
		if addr&align != 0 {
			c.raise(excIllegalStore)
			return
		}
	}

	if c.COP0.IsCacheIsolated() {
		return
	}

	value := c.Regs.Get(rt(word))
	switch size {
	case sizeByte:
		c.MMU.Write8(addr, value)
	case sizeHalf:
		c.MMU.Write16(addr, value)
	default:
		c.MMU.Write32(addr, value)
	}
}

// lwlMergeMask and lwrMergeMask implement the bit-for-bit merge table from
// §4.1 keyed by addr&3: how much of the register survives the merge, and
// the shift applied to the aligned memory word before merging it in.
var lwlMergeMask = [4]uint32{0x00FFFFFF, 0x0000FFFF, 0x000000FF, 0x00000000}
var lwlWordShift = [4]uint32{24, 16, 8, 0}
var lwrMergeMask = [4]uint32{0x00000000, 0xFF000000, 0xFFFF0000, 0xFFFFFF00}
var lwrWordShift = [4]uint32{0, 8, 16, 24}

// loadUnaligned implements LWL (isLeft=true) and LWR (isLeft=false): merge
// one aligned memory word into the register currently held for rt, reading
// the pending load-delay value of rt if one is queued (the one place the
// delay queue shadows the register file on read).
func (c *CPU) loadUnaligned(word uint32, isLeft bool) {
	if c.COP0.IsCacheIsolated() {
		return
	}

	addr := c.Regs.Get(rs(word)) + signExtend16(imm16(word))
	aligned := addr &^ 3
	shift := addr & 3

	target := rt(word)
	current, pending := c.Regs.PendingValue(target)
	if !pending {
		current = c.Regs.Get(target)
	}

	memWord := c.MMU.Read32(aligned)

	var merged uint32
	if isLeft {
		merged = (current & lwlMergeMask[shift]) | (memWord << lwlWordShift[shift])
	} else {
		merged = (current & lwrMergeMask[shift]) | (memWord >> lwrWordShift[shift])
	}
	c.Regs.QueueLoad(target, merged)
}

// swlStoreMask/swrStoreMask mirror the load tables for the store side: how
// much of the aligned memory word survives, and the shift applied to the
// register value before it is merged in.
var swlStoreMask = [4]uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000, 0x00000000}
var swlRegShift = [4]uint32{24, 16, 8, 0}
var swrStoreMask = [4]uint32{0x00000000, 0x000000FF, 0x0000FFFF, 0x00FFFFFF}
var swrRegShift = [4]uint32{0, 8, 16, 24}

// storeUnaligned implements SWL (isLeft=true) and SWR (isLeft=false).
func (c *CPU) storeUnaligned(word uint32, isLeft bool) {
	if c.COP0.IsCacheIsolated() {
		return
	}

	addr := c.Regs.Get(rs(word)) + signExtend16(imm16(word))
	aligned := addr &^ 3
	shift := addr & 3

	regValue := c.Regs.Get(rt(word))
	memWord := c.MMU.Read32(aligned)

	var merged uint32
	if isLeft {
		merged = (memWord & swlStoreMask[shift]) | (regValue >> swlRegShift[shift])
	} else {
		merged = (memWord & swrStoreMask[shift]) | (regValue << swrRegShift[shift])
	}
	c.MMU.Write32(aligned, merged)
}
