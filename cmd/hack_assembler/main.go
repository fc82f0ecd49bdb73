package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/n2t-toolchain/n2t/pkg/asm"
	"github.com/n2t-toolchain/n2t/pkg/hack"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The process
involves parsing the assembly code, resolving symbols, and generating machine code.
`, "\n", " ")

var HackAssembler = cli.New(Description).
	WithArg(cli.NewArg("input", "The assembler (.asm) file, or a directory of them, to be compiled")).
	WithArg(cli.NewArg("output", "The compiled binary output (.hack), or a directory when 'input' is one")).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	info, err := os.Stat(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input: %s\n", err)
		return -1
	}

	if !info.IsDir() {
		if err := assembleFile(args[0], args[1]); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
		return 0
	}

	if err := os.MkdirAll(args[1], 0o755); err != nil {
		fmt.Printf("ERROR: Unable to create output directory: %s\n", err)
		return -1
	}

	sources := []string{}
	filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".asm" {
			sources = append(sources, path)
		}
		return nil
	})
	sort.Strings(sources)

	for _, source := range sources {
		stem := strings.TrimSuffix(filepath.Base(source), ".asm")
		destination := filepath.Join(args[1], stem+".hack")
		if err := assembleFile(source, destination); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
	}

	return 0
}

// assembleFile runs the full Assembler pipeline (parse, lower, codegen) on a single
// '.asm' source file and writes its Hack binary counterpart to 'destination'.
func assembleFile(source, destination string) error {
	input, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("unable to open input file: %w", err)
	}

	output, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	defer output.Close()

	// Instantiate a parser for the Asm program
	parser := asm.NewParser(bytes.NewReader(input))
	// Parses the input file content and extract an AST (as a 'asm.Program') from it.
	asmProgram, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("unable to complete 'parsing' pass: %w", err)
	}

	// Instantiate a lowerer to convert the program from Asm to Hack
	lowerer := asm.NewLowerer(asmProgram)
	// Lowers the asm.Program to an in-memory/IR representation of its Hack counterpart 'hack.Program'.
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		return fmt.Errorf("unable to complete 'lowering' pass: %w", err)
	}

	// Now, instantiates a code generator for the Hack (compiled) program
	codegen := hack.NewCodeGenerator(hackProgram, table)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		return fmt.Errorf("unable to complete 'codegen' pass: %w", err)
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return nil
}

func main() { os.Exit(HackAssembler.Run(os.Args, os.Stdout)) }
