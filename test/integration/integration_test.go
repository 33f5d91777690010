package integration_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/stax/compiler"
	"github.com/chazu/stax/pkg/bytecode"
	"github.com/chazu/stax/vm"
)

// ---------------------------------------------------------------------------
// Integration test helpers
// ---------------------------------------------------------------------------

// run compiles source and executes it on a fresh machine, returning the
// result and everything emitted through the output sink.
func run(t *testing.T, source string) (vm.Result, string) {
	t.Helper()
	prog, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("compile error: %v\nsource: %s", err, source)
	}

	machine := vm.New()
	var out bytes.Buffer
	machine.SetOutput(&out)

	res, err := machine.Execute(prog)
	if err != nil {
		t.Fatalf("execute error: %v\nsource: %s", err, source)
	}
	return res, out.String()
}

// evalInt compiles and executes source and requires a final value.
func evalInt(t *testing.T, source string) int64 {
	t.Helper()
	res, _ := run(t, source)
	if !res.OK {
		t.Fatalf("no result for source: %s", source)
	}
	return res.Value
}

// ---------------------------------------------------------------------------
// 1. Arithmetic expressions
// ---------------------------------------------------------------------------

func TestIntegrationE2E_Arithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected int64
	}{
		{"3 4 +", 7},
		{"10 3 -", -7},
		{"6 7 *", 42},
		{"20 4 /", 0},
		{"4 20 /", 5},
		{"1 2 + 3 + 4 +", 10},
		{"2 3 * 4 * 5 *", 120},
	}

	for _, tc := range tests {
		if got := evalInt(t, tc.source); got != tc.expected {
			t.Errorf("%q = %d, want %d", tc.source, got, tc.expected)
		}
	}
}

// ---------------------------------------------------------------------------
// 2. Countdown loop: emits 10 down to 1, leaves 0
// ---------------------------------------------------------------------------

func TestIntegrationE2E_Countdown(t *testing.T) {
	source := "10 0 store 0: 0 load . 1 0 load - 0 store 0 load 0 cjmp 0"

	res, out := run(t, source)

	if !res.OK || res.Value != 0 {
		t.Errorf("result = %v, want 0", res)
	}

	want := "10\n9\n8\n7\n6\n5\n4\n3\n2\n1\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

// ---------------------------------------------------------------------------
// 3. Summation loop: 1 + 2 + ... + 10
// ---------------------------------------------------------------------------

func TestIntegrationE2E_SumLoop(t *testing.T) {
	// memory[0] = counter, memory[1] = accumulator
	source := "0 0 store 0 1 store" + // counter = 0, sum = 0
		" 0: 1 0 load + 0 store" + // loop: counter += 1
		" 0 load 1 load + 1 store" + // sum += counter
		" 10 0 load - 0 cjmp" + // loop while counter != 10
		" 1 load" // leave the sum

	if got := evalInt(t, source); got != 55 {
		t.Errorf("sum 1..10 = %d, want 55", got)
	}
}

// ---------------------------------------------------------------------------
// 4. Conditional branch selects a value
// ---------------------------------------------------------------------------

func TestIntegrationE2E_ConditionalSelect(t *testing.T) {
	// If memory[0] < 10 emit 1, else emit 2.
	tests := []struct {
		seed     int64
		expected string
	}{
		{5, "1\n"},
		{50, "2\n"},
	}

	for _, tc := range tests {
		prog := bytecode.Program{
			bytecode.Lit(tc.seed), bytecode.Lit(0), bytecode.Store,
			bytecode.Lit(10), bytecode.Lit(0), bytecode.Load, bytecode.Lt,
			bytecode.Lit(0), bytecode.CJmp,
			bytecode.Lit(2), bytecode.Put,
			bytecode.Lit(1), bytecode.Jmp,
			bytecode.Label(0),
			bytecode.Lit(1), bytecode.Put,
			bytecode.Label(1),
		}

		machine := vm.New()
		var out bytes.Buffer
		machine.SetOutput(&out)
		if _, err := machine.Execute(prog); err != nil {
			t.Fatalf("execute error: %v", err)
		}
		if out.String() != tc.expected {
			t.Errorf("seed %d: output = %q, want %q", tc.seed, out.String(), tc.expected)
		}
	}
}

// ---------------------------------------------------------------------------
// 5. Compile, marshal, unmarshal, execute: the .stxc pipeline
// ---------------------------------------------------------------------------

func TestIntegrationE2E_WireRoundTripExecutes(t *testing.T) {
	source := "6 7 * 0 store 0 load 0 load +"

	prog, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	data, err := bytecode.MarshalProgram(prog)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	loaded, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	machine := vm.New()
	machine.SetOutput(&bytes.Buffer{})
	res, err := machine.Execute(loaded)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !res.OK || res.Value != 84 {
		t.Errorf("result = %v, want 84", res)
	}
}

// ---------------------------------------------------------------------------
// 6. Disassembly of compiled source
// ---------------------------------------------------------------------------

func TestIntegrationE2E_DisassembleCompiled(t *testing.T) {
	prog, err := compiler.Compile("0: 1 2 + . 0 jmp")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	listing := bytecode.Disassemble(prog)
	for _, want := range []string{"LABEL 0", "LIT 1", "LIT 2", "ADD", "PUT", "JMP"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}

// ---------------------------------------------------------------------------
// 7. State persists across executions of separately compiled fragments
// ---------------------------------------------------------------------------

func TestIntegrationE2E_SessionAccumulation(t *testing.T) {
	machine := vm.New()
	machine.SetOutput(&bytes.Buffer{})

	fragments := []string{
		"100 0 store",
		"1 0 load + 0 store",
		"1 0 load + 0 store",
		"0 load",
	}

	var res vm.Result
	for _, src := range fragments {
		prog, err := compiler.Compile(src)
		if err != nil {
			t.Fatalf("compile error: %v\nsource: %s", err, src)
		}
		res, err = machine.Execute(prog)
		if err != nil {
			t.Fatalf("execute error: %v\nsource: %s", err, src)
		}
	}

	if !res.OK || res.Value != 102 {
		t.Errorf("final value = %v, want 102", res)
	}
}

// ---------------------------------------------------------------------------
// 8. Traps surface from compiled source
// ---------------------------------------------------------------------------

func TestIntegrationE2E_TrapFromSource(t *testing.T) {
	prog, err := compiler.Compile("0 1 /")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	machine := vm.New()
	machine.SetOutput(&bytes.Buffer{})
	_, err = machine.Execute(prog)

	var trap *vm.TrapError
	if !errors.As(err, &trap) {
		t.Fatalf("error = %v, want a *vm.TrapError", err)
	}
	if trap.Trap != vm.TrapDivideByZero {
		t.Errorf("trap = %v, want TrapDivideByZero", trap.Trap)
	}
}
