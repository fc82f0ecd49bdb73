package hack

import (
	"fmt"
	"strconv"
)

// ----------------------------------------------------------------------------
// Translation tables

// This section contains the translation tables cornerstone of the codegen phase.
//
// 'CompTable' is grouped by operand count (nullary constants, unary negations, binary
// register ops) rather than declaration order, since that's how a reader looks one up:
// by what the comp string looks like, not by when the Hack spec happened to list it.
//	- 'BuiltInTable': Specifies how to translate BuiltIn labels in A instructions to their address
//  - 'CompTable': Specifies how to translate the 'Comp' opcode in C instructions
//  - 'DestTable': Specifies how to translate the 'Dest' opcode in C instructions
//  - 'JumpTable': Specifies how to translate the 'Jump' opcode in C instructions

var BuiltInTable = map[string]uint16{
	// Virtual Machine specific aliases (see project 7)
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	// Named general purpose registers
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	// Memory mapped I/O locations
	"SCREEN": 16384, "KBD": 24576,
}

var CompTable = map[string]uint16{
	// - Nullary: constants and identities
	"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
	"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
	// - Unary: negations, increment and decrement
	"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
	"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
	"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
	"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
	// - Binary: register with register, arithmetic then bitwise
	"D+A": 0b0000010, "D+M": 0b1000010,
	"D-A": 0b0010011, "D-M": 0b1010011,
	"A-D": 0b0000111, "M-D": 0b1000111,
	"D&A": 0b0000000, "D&M": 0b1000000,
	"D|A": 0b0010101, "D|M": 0b1010101,
}

var DestTable = map[string]uint16{
	"": 0b000, "A": 0b100, "D": 0b010, "M": 0b001,
	"AD": 0b110, "AM": 0b101, "MD": 0b011, "AMD": 0b111,
}

var JumpTable = map[string]uint16{
	"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
	"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
}

// ----------------------------------------------------------------------------
// Code Generator

// Takes some a set of 'hack.Instruction' and spits out their binary counterparts.
//
// In order to resolve user defined labels in A instructions, during initialization of
// of the Code Generator a Symbol Table should be provided.
type CodeGenerator struct {
	program    Program     // The set of instructions to convert in Hack binary format
	table      SymbolTable // Mapping to resolve user-defined labels to their underlying address
	nVarOffset uint16      // Internal offset to allocate memory for new variables
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
// Requires both a non-nil Program 'p' (what we want to translate) as well as
// an optionally nullable Symbol Table 'st' used to resolve user defined labels.
func NewCodeGenerator(p Program, st SymbolTable) CodeGenerator {
	if st == nil {
		st = SymbolTable{}
	}
	return CodeGenerator{program: p, table: st}
}

// Translates each instruction in the 'Program' to the Hack binary format.
//
// Each instruction will pass through the following step: evaluation, validation and then conversion
// to its binary representation (stored inside a uint16) so that it can be further elaborated by the
// function caller (e.g. dumping .hack code to a file, runtime interpretation, ...).
func (cg *CodeGenerator) Generate() ([]string, error) {
	hack := make([]string, 0, len(cg.program))

	for _, instruction := range cg.program {
		var generated string
		var err error

		switch tInstruction := instruction.(type) {
		case AInstruction:
			generated, err = cg.GenerateAInst(tInstruction)
		case CInstruction:
			generated, err = cg.GenerateCInst(tInstruction)
		default:
			err = fmt.Errorf("unrecognized instruction type '%T'", instruction)
		}

		if err != nil {
			return nil, err
		}
		hack = append(hack, generated)
	}

	return hack, nil
}

// Specialized function to convert an A Instruction to the Hack format.
//
// As part of the conversion (for both built-in and user-defined labels) there's a lookup
// on their respective symbol tables in order to determine the 'real' location address.
// A user-defined label missing from the table is allocated as a new variable (see
// 'resolveLocation'); a location resolved to an Out-of-Bound address is an error.
func (cg *CodeGenerator) GenerateAInst(inst AInstruction) (string, error) {
	address, err := cg.resolveLocation(inst)
	if err != nil {
		return "", err
	}
	// An A instruction always has the first bit set to zero (the opcode bit) this also mean
	// that, since each instructions 16 bit there are only 15 bit to address the Hack computer
	// memory this in turn means that an address of 2^15 or above is invalid and out of bound.
	if address >= MaxAddressableMemory {
		return "", fmt.Errorf("location '%s' resolved to an address not allowed", inst.LocName)
	}
	return fmt.Sprintf("%016b", address), nil
}

// resolveLocation turns an A instruction's location into a concrete address, assigning a
// fresh variable slot (starting at 16) the first time an unrecognized 'Label' is seen.
func (cg *CodeGenerator) resolveLocation(inst AInstruction) (uint16, error) {
	switch inst.LocType {
	case Raw: // Simply translate the raw address from 'string' to 'int'
		num, err := strconv.ParseInt(inst.LocName, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("unable to resolve address for location '%s'", inst.LocName)
		}
		return uint16(num), nil

	case Label: // Lookup the label name in the provided SymbolTable
		if address, found := cg.table[inst.LocName]; found {
			return address, nil
		}
		// Not found: treat it as a new variable, assigned starting from address 16, and
		// record it so future references to the same name resolve to this same location.
		address := 16 + cg.nVarOffset
		cg.table[inst.LocName] = address
		cg.nVarOffset++
		return address, nil

	case BuiltIn: // Lookup the registry name in the well-known table
		if address, found := BuiltInTable[inst.LocName]; found {
			return address, nil
		}
		return 0, fmt.Errorf("unable to resolve address for location '%s'", inst.LocName)

	default:
		return 0, fmt.Errorf("unrecognized location type for '%s'", inst.LocName)
	}
}

// Specialized function to convert a C Instruction to the Hack format.
//
// 'Comp' is mandatory (no "" entry exists in 'CompTable'); 'Dest' and 'Jump' fall back to
// their all-zero opcode when absent ("" is itself a valid key in both tables). Each field
// is resolved independently and then packed into its bit position.
func (cg *CodeGenerator) GenerateCInst(inst CInstruction) (string, error) {
	comp, ok := CompTable[inst.Comp]
	if !ok {
		return "", fmt.Errorf("unable to translate C instruction, unknown 'comp' opcode '%s'", inst.Comp)
	}
	dest, ok := DestTable[inst.Dest]
	if !ok {
		return "", fmt.Errorf("unable to translate C instruction, unknown 'dest' opcode '%s'", inst.Dest)
	}
	jump, ok := JumpTable[inst.Jump]
	if !ok {
		return "", fmt.Errorf("unable to translate C instruction, unknown 'jump' opcode '%s'", inst.Jump)
	}

	command := uint16(0b111<<13) | comp<<6 | dest<<3 | jump
	return fmt.Sprintf("%016b", command), nil
}
