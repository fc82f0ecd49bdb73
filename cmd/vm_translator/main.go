package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/n2t-toolchain/n2t/pkg/asm"
	"github.com/n2t-toolchain/n2t/pkg/vm"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode'like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	// 'AsOptional()' allows to have more than one input .vm file (or a directory)
	WithArg(cli.NewArg("inputs", "The bytecode (.vm) file(s) or directory to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The compiled binary output (.asm)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("dump-ir", "Emits the parsed VM text instead of lowering to Assembler").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 || options["output"] == "" {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	sources, directoryMode, err := discoverSources(args)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	output, err := os.Create(options["output"])
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	// Allocates a 'vm.Program' struct to save all the parsed translation unit
	// (the .vm files) that will be parsed and lowered independently and then
	// sent to the codegen phases (that will create a monolithic compiled output).
	program := vm.Program{}

	// For every file provided by the user we do the following things
	for _, input := range sources {
		content, err := os.ReadFile(input)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		// Removes the file extension to use the bare module name, since the
		// 'static' segment addresses itself with it.
		moduleName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

		// Instantiate a parser for the Vm program
		parser := vm.NewParser(bytes.NewReader(content))
		// Parses the input file content and extract an AST (as a 'vm.Module') from it.
		program[moduleName], err = parser.Parse()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
			return -1
		}
	}

	// '--dump-ir' skips lowering entirely and re-serializes the just-parsed 'vm.Program'
	// back to VM text, module by module in the same deterministic order used elsewhere;
	// useful to inspect what the parser actually produced before trusting it to the
	// calling-convention lowering below (mirrors the Jack analyzer's '--tokens-only').
	if _, dumpIR := options["dump-ir"]; dumpIR {
		if err := dumpProgramIR(program, output); err != nil {
			fmt.Printf("ERROR: Unable to complete 'dump-ir' pass: %s\n", err)
			return -1
		}
		return 0
	}

	// Bootstrap emission is implicit in the invocation mode, not an independent flag:
	// a single-file input never gets the 'SP=256; call Sys.init 0' prelude, a directory
	// of modules always does (it is the only mode that assembles a runnable whole program).
	lowerer := vm.NewLowerer(program, directoryMode)
	// Lowers the vm.Program to an in-memory/IR representation of its Asm counterpart 'asm.Program'.
	asmProgram, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Now, instantiates a code generator for the Asm (compiled) program
	codegen := asm.NewCodeGenerator(asmProgram)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return 0
}

// dumpProgramIR re-serializes a parsed 'vm.Program' back to VM text, one module after
// another in lexicographic module-name order, each preceded by a '// module <name>'
// marker so multi-file dumps stay readable.
func dumpProgramIR(program vm.Program, output *os.File) error {
	names := make([]string, 0, len(program))
	for name := range program {
		names = append(names, name)
	}
	sort.Strings(names)

	codegen := vm.NewCodeGenerator(program)
	generated, err := codegen.Generate()
	if err != nil {
		return err
	}

	for _, name := range names {
		output.Write([]byte(fmt.Sprintf("// module %s\n", name)))
		for _, line := range generated[name] {
			output.Write([]byte(fmt.Sprintf("%s\n", line)))
		}
	}

	return nil
}

// discoverSources expands every positional argument into a flat, sorted list of
// '.vm' files: a plain file is kept as-is, a directory is expanded to its '.vm'
// members (non-recursive, matching the VM's one-module-per-file/class convention).
// The second return value reports whether any argument was a directory: that alone
// decides whether the bootstrap prelude gets emitted, per the invocation-mode rule.
func discoverSources(args []string) ([]string, bool, error) {
	sources := []string{}
	directoryMode := false

	for _, input := range args {
		info, err := os.Stat(input)
		if err != nil {
			return nil, false, fmt.Errorf("unable to open input: %w", err)
		}

		if !info.IsDir() {
			sources = append(sources, input)
			continue
		}

		directoryMode = true

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, false, fmt.Errorf("unable to read directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".vm" {
				sources = append(sources, filepath.Join(input, entry.Name()))
			}
		}
	}

	sort.Strings(sources)
	return sources, directoryMode, nil
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
