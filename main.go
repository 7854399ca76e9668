// bug compiles bug source code into bytecode and runs it in a virtual machine.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/edilson258/bug/checker"
	"github.com/edilson258/bug/codegen"
	"github.com/edilson258/bug/diagnostic"
	"github.com/edilson258/bug/lexer"
	"github.com/edilson258/bug/parser"
	"github.com/edilson258/bug/repl"
	"github.com/edilson258/bug/serialize"
	"github.com/edilson258/bug/stdlib"
	"github.com/edilson258/bug/vm"
)

const version = "0.1.0"

// printUsage displays custom usage information.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `bug v%s

USAGE:
    %s [OPTIONS]
    %s <COMMAND> [ARGS]...

DESCRIPTION:
    bug compiles bug source code into bytecode and runs it in a virtual
    machine. Without any arguments, it starts an interactive REPL.

COMMANDS:
    run <file>          Compile and run a .bug source file
    run-bin <file>      Run an already-serialized .bin bytecode file
    compile <file>...   Compile one or more .bug files to .bin, in parallel

OPTIONS:
    -d, --debug             Enable debug mode with more verbose output
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Compile and run a script
    %s run hello.bug

    # Compile several scripts to bytecode
    %s compile hello.bug fizzbuzz.bug

    # Run a previously compiled bytecode file
    %s run-bin hello.bin

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	debugFlag := flag.Bool("debug", false, "Enable debug mode with more verbose output")
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.BoolVar(debugFlag, "d", false, "Enable debug mode with more verbose output")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("bug v%s\n", version)
		return
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "run":
			requireArgs(args[1:], 1, "run <file>")
			runFile(args[1], *debugFlag)
			return
		case "run-bin":
			requireArgs(args[1:], 1, "run-bin <file>")
			runBinFile(args[1])
			return
		case "compile":
			requireArgs(args[1:], 1, "compile <file>...")
			compileFiles(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
			flag.Usage()
			os.Exit(1)
		}
	}

	username := "unknown"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}

	repl.Start(username, repl.Options{Debug: *debugFlag})
}

func requireArgs(args []string, min int, usage string) {
	if len(args) < min {
		fmt.Fprintf(os.Stderr, "usage: %s %s\n", os.Args[0], usage)
		os.Exit(1)
	}
}

// runFile compiles and executes a single .bug source file.
func runFile(filename string, debug bool) {
	src := readFile(filename)

	natives := stdlib.New(os.Stdout, os.Stdin)
	protos := stdlib.Prototypes(natives)

	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		for _, e := range p.Errors() {
			fmt.Fprintln(os.Stderr, diagnostic.Render(filename, diagnostic.Diagnostic{Kind: diagnostic.Syntax, Message: e.Msg, Span: e.Span}, src))
		}
		os.Exit(1)
	}

	diags := checker.New(protos, src).Check(prog)
	if len(diags) != 0 {
		fmt.Fprintln(os.Stderr, diagnostic.RenderAll(filename, diags, src))
		os.Exit(1)
	}

	compiled := codegen.Generate(prog)
	if debug {
		for name, fn := range compiled.Functions {
			fmt.Fprintf(os.Stderr, "DEBUG: function %s (arity=%d, locals=%d)\n%s\n", name, fn.Arity, fn.MaxLocals, fn.Code.String())
		}
	}

	if err := vm.New(compiled, natives).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		os.Exit(1)
	}
}

// runBinFile deserializes and executes a previously compiled .bin file.
func runBinFile(filename string) {
	f, err := os.Open(filepath.Clean(filename))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %s\n", err)
		os.Exit(1)
	}
	defer f.Close()

	compiled, err := serialize.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decoding bytecode: %s\n", err)
		os.Exit(1)
	}

	natives := stdlib.New(os.Stdout, os.Stdin)
	if err := vm.New(compiled, natives).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		os.Exit(1)
	}
}

// compileFiles compiles every given .bug file to a sibling .bin file in
// parallel. Each file is an independent compile unit with no shared
// checker/codegen state, so a WaitGroup over goroutines is sufficient;
// there's no cross-file cancellation semantics worth pulling in errgroup
// for (see DESIGN.md's "Dropped teacher dependencies").
func compileFiles(filenames []string) {
	var wg sync.WaitGroup
	failures := make([]error, len(filenames))

	for i, filename := range filenames {
		wg.Add(1)
		go func(i int, filename string) {
			defer wg.Done()
			failures[i] = compileOne(filename)
		}(i, filename)
	}
	wg.Wait()

	exitCode := 0
	for i, err := range failures {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filenames[i], err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func compileOne(filename string) error {
	src := readFile(filename)
	natives := stdlib.New(io.Discard, nil)
	protos := stdlib.Prototypes(natives)

	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		return fmt.Errorf("%d syntax error(s)", len(p.Errors()))
	}

	diags := checker.New(protos, src).Check(prog)
	if len(diags) != 0 {
		return fmt.Errorf("%d diagnostic(s)", len(diags))
	}

	compiled := codegen.Generate(prog)

	out := filename[:len(filename)-len(filepath.Ext(filename))] + ".bin"
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return err
	}
	defer f.Close()

	return serialize.Encode(compiled, f)
}

func readFile(filename string) string {
	cleaned := filepath.Clean(filename)
	//nolint:gosec // filename comes from a command-line argument, not untrusted user input
	content, err := os.ReadFile(cleaned)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %s\n", err)
		os.Exit(1)
	}
	return string(content)
}
