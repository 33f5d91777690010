package bytecode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" {
			t.Errorf("opcode 0x%02X has empty name", byte(op))
		}
		if strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("opcode 0x%02X reported as unknown", byte(op))
		}
	}
}

func TestOpcodeCount(t *testing.T) {
	// The instruction set is closed: 16 opcodes.
	if got := OpcodeCount(); got != 16 {
		t.Errorf("OpcodeCount() = %d, want 16", got)
	}
}

func TestUnknownOpcode(t *testing.T) {
	op := Opcode(0xEE)
	if op.Valid() {
		t.Error("Opcode(0xEE).Valid() = true, want false")
	}
	if got := op.String(); got != "UNKNOWN(0xEE)" {
		t.Errorf("String() = %q, want UNKNOWN(0xEE)", got)
	}
}

func TestHasArg(t *testing.T) {
	for _, op := range AllOpcodes() {
		want := op == OpLit || op == OpLabel
		if got := op.HasArg(); got != want {
			t.Errorf("%s.HasArg() = %v, want %v", op, got, want)
		}
	}
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		op         Opcode
		jump       bool
		arithmetic bool
		comparison bool
	}{
		{OpAdd, false, true, false},
		{OpDiv, false, true, false},
		{OpEq, false, false, true},
		{OpGt, false, false, true},
		{OpJmp, true, false, false},
		{OpCJmp, true, false, false},
		{OpLabel, false, false, false},
		{OpPut, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsJump(); got != tt.jump {
			t.Errorf("%s.IsJump() = %v, want %v", tt.op, got, tt.jump)
		}
		if got := tt.op.IsArithmetic(); got != tt.arithmetic {
			t.Errorf("%s.IsArithmetic() = %v, want %v", tt.op, got, tt.arithmetic)
		}
		if got := tt.op.IsComparison(); got != tt.comparison {
			t.Errorf("%s.IsComparison() = %v, want %v", tt.op, got, tt.comparison)
		}
	}
}

func TestStackEffectMetadata(t *testing.T) {
	// Comparisons pop exactly two and push exactly one; they never
	// propagate a third value.
	for _, op := range []Opcode{OpEq, OpLt, OpGt} {
		info := GetOpcodeInfo(op)
		if info.StackPop != 2 || info.StackPush != 1 {
			t.Errorf("%s stack effect = (%d, %d), want (2, 1)", op, info.StackPop, info.StackPush)
		}
	}
	if info := GetOpcodeInfo(OpLabel); info.StackPop != 0 || info.StackPush != 0 {
		t.Errorf("LABEL stack effect = (%d, %d), want (0, 0)", info.StackPop, info.StackPush)
	}
}
