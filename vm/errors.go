package vm

import (
	"fmt"

	"github.com/chazu/stax/pkg/bytecode"
)

// Trap identifies a fatal invariant violation. Traps are authored-program
// bugs: they abort the run immediately and are never retried.
type Trap int

const (
	TrapDivideByZero Trap = iota
	TrapLoadBounds
	TrapStoreBounds
	TrapUndefinedLabel
	TrapLabelOrder
	TrapBadOpcode
)

var trapText = [...]string{
	"division by zero",
	"load address out of range",
	"store address out of range",
	"undefined label",
	"label defined out of order",
	"illegal opcode",
}

func (t Trap) String() string {
	if int(t) < len(trapText) {
		return trapText[t]
	}
	return fmt.Sprintf("Trap(%d)", int(t))
}

// TrapError reports a fatal failure together with the instruction that
// raised it.
type TrapError struct {
	Trap  Trap
	IP    int            // instruction index at the time of the trap
	Instr bytecode.Instr // offending instruction
	Addr  int64          // memory address or label id, when relevant
}

func (e *TrapError) Error() string {
	switch e.Trap {
	case TrapLoadBounds, TrapStoreBounds:
		return fmt.Sprintf("vm: %s (address %d) at %04d: %s", e.Trap, e.Addr, e.IP, e.Instr)
	case TrapUndefinedLabel, TrapLabelOrder:
		return fmt.Sprintf("vm: %s (label %d) at %04d: %s", e.Trap, e.Addr, e.IP, e.Instr)
	default:
		return fmt.Sprintf("vm: %s at %04d: %s", e.Trap, e.IP, e.Instr)
	}
}
