// debug_script.go - Lua-scripted soft breakpoints

/*
Implements the "reserved but unused" debug-register slots from §3/§4.2
(BPC, BDA, DCIC, BDAM, BPCM) as a scripting layer instead of modeled
hardware: a loaded Lua script registers predicates evaluated once per
Step(), with reg()/mem() accessors bound into the Lua state. The COP0
indices themselves stay simple zero-returning stubs exactly as documented;
this is purely a host-side debugging convenience built on top of them.
*/

package core

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// scriptEngine evaluates a loaded Lua soft-breakpoint script against the
// current CPU state once per retired instruction.
type scriptEngine struct {
	state *lua.LState
	cpu   *CPU
	hit   bool
	hitAt uint32
}

// newScriptEngine builds a Lua state with reg()/mem()/pc() bound to the
// given CPU, and a brk() function the script calls to flag a hit.
func newScriptEngine(cpu *CPU) *scriptEngine {
	s := &scriptEngine{cpu: cpu, state: lua.NewState()}

	s.state.SetGlobal("reg", s.state.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		a := newCPUAdapter(s.cpu)
		v, _ := a.GetRegister(name)
		L.Push(lua.LNumber(v))
		return 1
	}))
	s.state.SetGlobal("mem", s.state.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckNumber(1))
		L.Push(lua.LNumber(s.cpu.MMU.Read32(addr)))
		return 1
	}))
	s.state.SetGlobal("pc", s.state.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(s.cpu.Regs.pc))
		return 1
	}))
	s.state.SetGlobal("brk", s.state.NewFunction(func(L *lua.LState) int {
		s.hit = true
		s.hitAt = s.cpu.Regs.pc
		return 0
	}))

	return s
}

// LoadFile reads a Lua script from disk and compiles it; the script body
// is expected to define a global function `check()` called once per step.
func (s *scriptEngine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("debug_script: reading %s: %w", path, err)
	}
	if err := s.state.DoString(string(data)); err != nil {
		return fmt.Errorf("debug_script: compiling %s: %w", path, err)
	}
	return nil
}

// Check calls the script's check() function, if defined, and reports
// whether it flagged a soft breakpoint hit since the last call.
func (s *scriptEngine) Check() (hit bool, at uint32) {
	fn := s.state.GetGlobal("check")
	if fn == lua.LNil {
		return false, 0
	}
	s.hit = false
	if err := s.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		fmt.Fprintf(os.Stderr, "debug_script: check() error: %v\n", err)
		return false, 0
	}
	return s.hit, s.hitAt
}

// Close releases the Lua state.
func (s *scriptEngine) Close() {
	s.state.Close()
}
