package vm

import "strconv"

// Result is the outcome of a completed run: the final stack top, or no
// value at all. A program that drains its stack (any pop while the stack
// is empty, or an empty stack at end of program) produces no value; that is
// a designed termination signal, not a failure.
type Result struct {
	Value int64
	OK    bool
}

func someResult(v int64) Result {
	return Result{Value: v, OK: true}
}

// String returns the decimal value, or "(no value)" for an empty Result.
func (r Result) String() string {
	if !r.OK {
		return "(no value)"
	}
	return strconv.FormatInt(r.Value, 10)
}
