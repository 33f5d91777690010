// Stax CLI - compiles and runs stax programs
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/stax/compiler"
	"github.com/chazu/stax/history"
	"github.com/chazu/stax/manifest"
	"github.com/chazu/stax/pkg/bytecode"
	"github.com/chazu/stax/vm"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	trace := flag.Bool("trace", false, "Log every dispatched instruction")
	disasm := flag.Bool("disasm", false, "Print the bytecode listing and exit")
	dump := flag.Bool("dump", false, "Print a machine state snapshot after execution")
	expr := flag.String("e", "", "Run inline source instead of a file")
	compileOut := flag.String("o", "", "Compile to a bytecode file instead of executing")
	record := flag.Bool("record", false, "Record the run in the history ledger")
	showHistory := flag.Bool("history", false, "List recent recorded runs and exit")
	exitStatus := flag.Bool("exit-status", false, "Use the final value as the process exit status")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stax [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs a stax program. Precompiled .stxc files run directly.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stax countdown.stx            # Compile and run\n")
		fmt.Fprintf(os.Stderr, "  stax -e '1 2 +'               # Run inline source\n")
		fmt.Fprintf(os.Stderr, "  stax -disasm countdown.stx    # Show the listing\n")
		fmt.Fprintf(os.Stderr, "  stax -o countdown.stxc countdown.stx  # Compile to a file\n")
		fmt.Fprintf(os.Stderr, "  stax -record countdown.stx    # Record the run\n")
		fmt.Fprintf(os.Stderr, "  stax -history                 # List recent runs\n")
	}
	flag.Parse()

	// Project manifest supplies defaults; flags take precedence.
	mf, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if mf != nil {
		*trace = *trace || mf.Run.Trace
		*record = *record || mf.Run.Record
	}

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if *trace {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if *showHistory {
		if err := listHistory(mf); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, source, prog, err := loadProgram(*expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("Program: %d instructions, %d labels\n", len(prog), prog.LabelCount())
	}

	if *disasm {
		fmt.Print(bytecode.DisassembleWithName(prog, path))
		return
	}

	if *compileOut != "" {
		data, err := bytecode.MarshalProgram(prog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*compileOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote %s (%d bytes)\n", *compileOut, len(data))
		}
		return
	}

	machine := vm.New()
	machine.Trace = *trace
	out := &countingWriter{w: os.Stdout}
	machine.SetOutput(out)

	res, runErr := machine.Execute(prog)

	if *record {
		if err := recordRun(mf, path, source, res, runErr, out.lines); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording run: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}

	if res.OK {
		fmt.Println(res.Value)
	}

	if *dump {
		fmt.Fprint(os.Stderr, machine.Snapshot())
	}

	if *exitStatus && res.OK && res.Value >= 0 && res.Value <= 255 {
		os.Exit(int(res.Value))
	}
}

// loadProgram resolves the program from inline source, a source file, or a
// precompiled bytecode file. source is empty for precompiled programs.
func loadProgram(expr string) (path, source string, prog bytecode.Program, err error) {
	if expr != "" {
		if flag.NArg() != 0 {
			return "", "", nil, fmt.Errorf("cannot combine -e with a file argument")
		}
		prog, err = compiler.Compile(expr)
		return "-", expr, prog, err
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path = flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return path, "", nil, err
	}

	if strings.HasSuffix(path, ".stxc") {
		prog, err = bytecode.UnmarshalProgram(data)
		return path, "", prog, err
	}

	source = string(data)
	prog, err = compiler.Compile(source)
	return path, source, prog, err
}

// historyStore opens the configured ledger: manifest setting first, the
// default location otherwise.
func historyStore(mf *manifest.Manifest) (*history.Store, error) {
	path := ""
	if mf != nil {
		path = mf.HistoryPath()
	}
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}

func recordRun(mf *manifest.Manifest, path, source string, res vm.Result, runErr error, emitted int) error {
	store, err := historyStore(mf)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.Run{
		Path:     path,
		Hash:     sourceHash(source),
		Value:    res.Value,
		HasValue: res.OK,
		Emitted:  emitted,
	}
	if runErr != nil {
		run.Trap = runErr.Error()
	}
	return store.Record(run)
}

func listHistory(mf *manifest.Manifest) error {
	store, err := historyStore(mf)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(20)
	if err != nil {
		if err == history.ErrNoRuns {
			fmt.Println("No recorded runs")
			return nil
		}
		return err
	}

	for _, r := range runs {
		outcome := r.Trap
		if outcome == "" {
			outcome = vm.Result{Value: r.Value, OK: r.HasValue}.String()
		}
		fmt.Printf("%s  %-20s %4d lines  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Path, r.Emitted, outcome)
	}
	return nil
}

// sourceHash returns the hex SHA-256 of the source text.
func sourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// countingWriter counts the lines written through it.
type countingWriter struct {
	w     io.Writer
	lines int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			c.lines++
		}
	}
	return c.w.Write(p)
}
