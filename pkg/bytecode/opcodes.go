package bytecode

import "fmt"

// Opcode identifies a single VM instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpDup  Opcode = 0x01 // Duplicate top of stack
	OpSwap Opcode = 0x02 // Pop two, push them back unchanged (net no-op)

	// ========================================================================
	// Literals (0x10-0x1F)
	// ========================================================================

	OpLit Opcode = 0x10 // Push the immediate operand

	// ========================================================================
	// Arithmetic (0x20-0x2F)
	// ========================================================================

	OpAdd Opcode = 0x20 // Pop two, push sum
	OpSub Opcode = 0x21 // Pop two, push difference (a - b where a is first-popped)
	OpMul Opcode = 0x22 // Pop two, push product
	OpDiv Opcode = 0x23 // Pop two, push quotient; divisor zero traps

	// ========================================================================
	// Comparison (0x30-0x3F)
	// ========================================================================

	OpEq Opcode = 0x30 // Pop two, push 1 if equal, 0 otherwise
	OpLt Opcode = 0x31 // Pop two, push 1 if a < b (a first-popped)
	OpGt Opcode = 0x32 // Pop two, push 1 if a > b (a first-popped)

	// ========================================================================
	// Memory (0x40-0x4F)
	// ========================================================================

	OpLoad  Opcode = 0x40 // Pop address, push memory cell
	OpStore Opcode = 0x41 // Pop address, pop value, write memory cell

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpLabel Opcode = 0x50 // Non-executing jump target marker: OpLabel <id>
	OpJmp   Opcode = 0x51 // Pop label id, jump to its instruction index
	OpCJmp  Opcode = 0x52 // Pop label id, pop condition, jump if nonzero

	// ========================================================================
	// I/O (0x60-0x6F)
	// ========================================================================

	OpPut Opcode = 0x60 // Pop a value, emit one decimal output line
)

// OpcodeInfo provides metadata about each opcode for debugging and tests.
type OpcodeInfo struct {
	Name      string // Human-readable name
	StackPop  int    // How many values popped from stack
	StackPush int    // How many values pushed to stack
	HasArg    bool   // Whether the instruction carries an immediate operand
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack manipulation
	OpDup:  {"DUP", 1, 2, false},
	OpSwap: {"SWAP", 2, 2, false},

	// Literals
	OpLit: {"LIT", 0, 1, true},

	// Arithmetic
	OpAdd: {"ADD", 2, 1, false},
	OpSub: {"SUB", 2, 1, false},
	OpMul: {"MUL", 2, 1, false},
	OpDiv: {"DIV", 2, 1, false},

	// Comparison
	OpEq: {"EQ", 2, 1, false},
	OpLt: {"LT", 2, 1, false},
	OpGt: {"GT", 2, 1, false},

	// Memory
	OpLoad:  {"LOAD", 1, 1, false},
	OpStore: {"STORE", 2, 0, false},

	// Control flow
	OpLabel: {"LABEL", 0, 0, true},
	OpJmp:   {"JMP", 1, 0, false},
	OpCJmp:  {"CJMP", 2, 0, false},

	// I/O
	OpPut: {"PUT", 1, 0, false},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Valid reports whether the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// HasArg reports whether the opcode carries an immediate operand.
func (op Opcode) HasArg() bool {
	return GetOpcodeInfo(op).HasArg
}

// IsJump returns true if this opcode transfers control.
func (op Opcode) IsJump() bool {
	return op == OpJmp || op == OpCJmp
}

// IsArithmetic returns true for the binary arithmetic opcodes.
func (op Opcode) IsArithmetic() bool {
	return op >= OpAdd && op <= OpDiv
}

// IsComparison returns true for the comparison opcodes.
func (op Opcode) IsComparison() bool {
	return op >= OpEq && op <= OpGt
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
