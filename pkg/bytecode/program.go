package bytecode

import "fmt"

// Instr is a single instruction: an opcode plus an optional immediate.
// Arg holds the literal value for OpLit and the label id for OpLabel; it is
// zero for every other opcode. Instructions are immutable once produced.
type Instr struct {
	Op  Opcode
	Arg int64
}

// String returns the assembly-like form of the instruction.
func (in Instr) String() string {
	if in.Op.HasArg() {
		return fmt.Sprintf("%s %d", in.Op, in.Arg)
	}
	return in.Op.String()
}

// Program is an ordered instruction sequence. The vm package borrows it
// read-only for the duration of one Execute call.
type Program []Instr

// Lit builds an OpLit instruction pushing v.
func Lit(v int64) Instr {
	return Instr{Op: OpLit, Arg: v}
}

// Label builds an OpLabel marker for the given label id.
func Label(id int64) Instr {
	return Instr{Op: OpLabel, Arg: id}
}

// Prebuilt operand-less instructions, convenient for hand-assembled
// programs and tests.
var (
	Add   = Instr{Op: OpAdd}
	Sub   = Instr{Op: OpSub}
	Mul   = Instr{Op: OpMul}
	Div   = Instr{Op: OpDiv}
	Load  = Instr{Op: OpLoad}
	Store = Instr{Op: OpStore}
	Jmp   = Instr{Op: OpJmp}
	CJmp  = Instr{Op: OpCJmp}
	Put   = Instr{Op: OpPut}
	Dup   = Instr{Op: OpDup}
	Swap  = Instr{Op: OpSwap}
	Eq    = Instr{Op: OpEq}
	Lt    = Instr{Op: OpLt}
	Gt    = Instr{Op: OpGt}
)

// LabelCount returns the number of distinct label ids a dense labeling
// would produce, which is one past the highest id defined in the program.
// It does not check ordering; the vm enforces the dense rule.
func (p Program) LabelCount() int {
	max := int64(-1)
	for _, in := range p {
		if in.Op == OpLabel && in.Arg > max {
			max = in.Arg
		}
	}
	return int(max + 1)
}
