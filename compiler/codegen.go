// Package compiler turns whitespace-delimited stax source into bytecode.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/stax/pkg/bytecode"
)

// Error describes a compile-time failure at a specific token. A token that
// is neither a known opcode, a parseable integer, nor a label definition is
// an authored-program error; compilation stops at the first one.
type Error struct {
	Token string // offending token text
	Index int    // zero-based position in the token stream
}

func (e *Error) Error() string {
	return fmt.Sprintf("compiler: malformed token %q at position %d", e.Token, e.Index)
}

// opcodeTable is the fixed token-to-opcode mapping.
var opcodeTable = map[string]bytecode.Opcode{
	"+":     bytecode.OpAdd,
	"-":     bytecode.OpSub,
	"*":     bytecode.OpMul,
	"/":     bytecode.OpDiv,
	"load":  bytecode.OpLoad,
	"store": bytecode.OpStore,
	"jmp":   bytecode.OpJmp,
	"cjmp":  bytecode.OpCJmp,
	".":     bytecode.OpPut,
	"dup":   bytecode.OpDup,
	"swap":  bytecode.OpSwap,
	"=":     bytecode.OpEq,
	"<":     bytecode.OpLt,
	">":     bytecode.OpGt,
}

// Compile translates source text into a program. The source is split into
// whitespace-delimited tokens, processed left to right with no lookahead;
// each token maps to exactly one instruction. Tokens outside the opcode
// table are tried as an integer literal first, then as a label definition
// of the form "N:".
func Compile(source string) (bytecode.Program, error) {
	tokens := strings.Fields(source)
	prog := make(bytecode.Program, 0, len(tokens))

	for i, tok := range tokens {
		if op, ok := opcodeTable[tok]; ok {
			prog = append(prog, bytecode.Instr{Op: op})
			continue
		}
		if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
			prog = append(prog, bytecode.Lit(v))
			continue
		}
		if id, ok := labelToken(tok); ok {
			prog = append(prog, bytecode.Label(id))
			continue
		}
		return nil, &Error{Token: tok, Index: i}
	}

	return prog, nil
}

// labelToken parses a label definition: a non-negative integer identifier
// followed by a trailing colon.
func labelToken(tok string) (int64, bool) {
	if len(tok) < 2 || !strings.HasSuffix(tok, ":") {
		return 0, false
	}
	id, err := strconv.ParseUint(tok[:len(tok)-1], 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(id), true
}
