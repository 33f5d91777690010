package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/stax/pkg/bytecode"
)

var log = commonlog.GetLogger("stax.vm")

// Machine executes programs against an operand stack and a flat memory
// store. Stack, memory, and jump table are created empty and persist for
// the Machine's lifetime across Execute calls; callers wanting isolation
// between runs construct one Machine per program or call Reset.
//
// A Machine is exclusively owned by its caller: single-threaded,
// synchronous, no shared state between Machines.
type Machine struct {
	stack     []int64
	memory    []int64
	jumpTable []int

	out io.Writer

	// Trace logs every dispatched instruction.
	Trace bool
}

// New creates a Machine with empty state, writing Put output to stdout.
func New() *Machine {
	return &Machine{
		stack: make([]int64, 0, 64),
		out:   os.Stdout,
	}
}

// SetOutput redirects the Put output sink.
func (m *Machine) SetOutput(w io.Writer) {
	m.out = w
}

// Reset clears the stack, memory, and jump table.
func (m *Machine) Reset() {
	m.stack = m.stack[:0]
	m.memory = m.memory[:0]
	m.jumpTable = m.jumpTable[:0]
}

// Execute runs a program to completion or failure. The program is borrowed
// read-only for the duration of the call.
//
// A pop from an empty stack anywhere in dispatch ends the run immediately
// with an empty Result and a nil error. Invariant violations (division by
// zero, memory bounds, label misuse, illegal opcodes) return a *TrapError.
func (m *Machine) Execute(program bytecode.Program) (Result, error) {
	if err := m.buildJumpTable(program); err != nil {
		return Result{}, err
	}

	ip := 0
	for ip < len(program) {
		in := program[ip]

		if m.Trace {
			log.Debugf("[%04d] %-8s depth=%d", ip, in.Op, len(m.stack))
		}

		jumped := false

		switch in.Op {
		case bytecode.OpLit:
			m.push(in.Arg)

		case bytecode.OpAdd:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.push(a + b)

		case bytecode.OpSub:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.push(a - b)

		case bytecode.OpMul:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.push(a * b)

		case bytecode.OpDiv:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			if b == 0 {
				return Result{}, &TrapError{Trap: TrapDivideByZero, IP: ip, Instr: in}
			}
			m.push(a / b)

		case bytecode.OpEq:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.pushBool(a == b)

		case bytecode.OpLt:
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.pushBool(a < b)

		case bytecode.OpGt:
			// Same operand order as LT, not its inverse.
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.pushBool(a > b)

		case bytecode.OpLoad:
			addr, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			if addr < 0 || addr >= int64(len(m.memory)) {
				return Result{}, &TrapError{Trap: TrapLoadBounds, IP: ip, Instr: in, Addr: addr}
			}
			m.push(m.memory[addr])

		case bytecode.OpStore:
			addr, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			val, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			switch {
			case addr < 0 || addr > int64(len(m.memory)):
				return Result{}, &TrapError{Trap: TrapStoreBounds, IP: ip, Instr: in, Addr: addr}
			case addr == int64(len(m.memory)):
				m.memory = append(m.memory, val)
			default:
				m.memory[addr] = val
			}

		case bytecode.OpLabel:
			// Already consumed by the jump-table pre-pass.

		case bytecode.OpJmp:
			target, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			idx, err := m.labelIndex(target, ip, in)
			if err != nil {
				return Result{}, err
			}
			ip = idx
			jumped = true

		case bytecode.OpCJmp:
			target, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			cond, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			if cond != 0 {
				idx, err := m.labelIndex(target, ip, in)
				if err != nil {
					return Result{}, err
				}
				ip = idx
				jumped = true
			}

		case bytecode.OpPut:
			v, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			fmt.Fprintln(m.out, v)

		case bytecode.OpDup:
			v, ok := m.pop()
			if !ok {
				return Result{}, nil
			}
			m.push(v)
			m.push(v)

		case bytecode.OpSwap:
			// Nets out to a no-op: the top two cells come back unchanged.
			a, b, ok := m.pop2()
			if !ok {
				return Result{}, nil
			}
			m.push(b)
			m.push(a)

		default:
			return Result{}, &TrapError{Trap: TrapBadOpcode, IP: ip, Instr: in}
		}

		if !jumped {
			ip++
		}
	}

	if top, ok := m.pop(); ok {
		return someResult(top), nil
	}
	return Result{}, nil
}

// buildJumpTable records the instruction index of every label in a single
// pre-pass. Label ids must be introduced densely (0, 1, 2, ... in order of
// first appearance); redefining an already-introduced id overwrites its
// entry. The dense rule keeps the table a plain slice with O(1) lookups.
func (m *Machine) buildJumpTable(program bytecode.Program) error {
	for i, in := range program {
		if in.Op != bytecode.OpLabel {
			continue
		}
		id := in.Arg
		switch {
		case id < 0 || id > int64(len(m.jumpTable)):
			return &TrapError{Trap: TrapLabelOrder, IP: i, Instr: in, Addr: id}
		case id == int64(len(m.jumpTable)):
			m.jumpTable = append(m.jumpTable, i)
		default:
			m.jumpTable[id] = i
		}
	}
	return nil
}

// labelIndex resolves a label id popped off the stack to its instruction
// index.
func (m *Machine) labelIndex(id int64, ip int, in bytecode.Instr) (int, error) {
	if id < 0 || id >= int64(len(m.jumpTable)) {
		return 0, &TrapError{Trap: TrapUndefinedLabel, IP: ip, Instr: in, Addr: id}
	}
	return m.jumpTable[id], nil
}

// Stack helpers

func (m *Machine) push(v int64) {
	m.stack = append(m.stack, v)
}

// pop removes and returns the stack top. ok is false when the stack is
// empty; callers treat that as the end of the run, not a failure.
func (m *Machine) pop() (int64, bool) {
	if len(m.stack) == 0 {
		return 0, false
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, true
}

// pop2 pops two values; a is the first-popped (the left operand of binary
// operations).
func (m *Machine) pop2() (a, b int64, ok bool) {
	a, ok = m.pop()
	if !ok {
		return
	}
	b, ok = m.pop()
	return
}

func (m *Machine) pushBool(v bool) {
	if v {
		m.push(1)
	} else {
		m.push(0)
	}
}
