package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/n2t-toolchain/n2t/pkg/jack"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Syntax Analyzer tokenizes and parses programs written in the Jack language
and emits a labeled parse tree as an XML document, one per source file. The Jack
language is a higher-level OOP language tailored for use with the Hack computer
architecture.
`, "\n", " ")

var JackAnalyzer = cli.New(Description).
	WithArg(cli.NewArg("inputs", "The source (.jack) files, or directories of them, to be analyzed").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("tokens-only", "Emits the flat token stream instead of the full parse tree").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	sources, err := discoverSources(args)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	_, tokensOnly := options["tokens-only"]

	for _, source := range sources {
		if err := analyzeFile(source, tokensOnly); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
	}

	return 0
}

// discoverSources expands every directory argument into its '.jack' members
// (recursively, since Jack classes are routinely organized into subfolders),
// keeps plain file arguments as-is, and returns the combined list in a
// deterministic, lexicographically sorted order.
func discoverSources(args []string) ([]string, error) {
	sources := []string{}

	for _, input := range args {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("unable to open input: %w", err)
		}

		if !info.IsDir() {
			sources = append(sources, input)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".jack" {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to walk input directory: %w", err)
		}
	}

	sort.Strings(sources)
	return sources, nil
}

// analyzeFile runs the tokenizer (and, unless 'tokensOnly', the parser) over a
// single '.jack' source file and writes its XML document as '<stem>Copy.xml'
// alongside the source, matching the course tooling's naming convention.
func analyzeFile(source string, tokensOnly bool) error {
	input, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("unable to open input file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	destination := filepath.Join(filepath.Dir(source), stem+"Copy.xml")

	output, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	defer output.Close()

	if tokensOnly {
		tokens, err := jack.Tokenize(input)
		if err != nil {
			return fmt.Errorf("unable to complete 'tokenizing' pass: %w", err)
		}
		if err := jack.SerializeTokens(tokens, output); err != nil {
			return fmt.Errorf("unable to complete 'serialize' pass: %w", err)
		}
		return nil
	}

	parser, err := jack.NewParser(bytes.NewReader(input))
	if err != nil {
		return fmt.Errorf("unable to complete 'tokenizing' pass: %w", err)
	}

	tree, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("unable to complete 'parsing' pass: %w", err)
	}

	if err := jack.Serialize(tree, output); err != nil {
		return fmt.Errorf("unable to complete 'serialize' pass: %w", err)
	}

	return nil
}

func main() { os.Exit(JackAnalyzer.Run(os.Args, os.Stdout)) }
