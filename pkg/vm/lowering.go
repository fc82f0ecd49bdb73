package vm

import (
	"fmt"
	"sort"

	"github.com/n2t-toolchain/n2t/pkg/asm"
)

// ----------------------------------------------------------------------------
// Segment addressing

// dynamicBaseRegister maps the segments whose address is computed at runtime by
// adding 'Offset' to a pointer register, as opposed to segments whose address is
// already known during lowering.
var dynamicBaseRegister = map[SegmentType]string{
	Local:    "LCL",
	Argument: "ARG",
	This:     "THIS",
	That:     "THAT",
}

// fixedSegmentAddress resolves 'segment'/'offset' to a concrete Assembler location
// (a raw address, a builtin register name, or a per-module static label) for every
// segment whose address does not depend on a base register read at runtime.
func fixedSegmentAddress(moduleName string, segment SegmentType, offset uint16) (string, error) {
	switch segment {
	case Temp:
		return fmt.Sprint(5 + offset), nil
	case Pointer:
		if offset == 0 {
			return "THIS", nil
		}
		if offset == 1 {
			return "THAT", nil
		}
		return "", fmt.Errorf("'pointer' segment only supports offset 0 or 1, got %d", offset)
	case Static:
		return fmt.Sprintf("%s.%d", moduleName, offset), nil
	default:
		return "", fmt.Errorf("segment '%s' has no fixed address", segment)
	}
}

// pushD returns the instructions that push the current value of the D register onto
// the stack and advance the stack pointer, shared by every 'push' variant below.
func pushD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"},
	}
}

// popIntoD returns the instructions that retreat the stack pointer and leave the
// popped value in the D register, shared by every 'pop' variant below.
func popIntoD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}
}

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one Module per source file) and produces the
// 'asm.Program' that implements it, including the calling convention (argument and
// segment-pointer frame save/restore) and the optional bootstrap sequence.
//
// Label, comparison and call-site uniqueness are tracked across the whole Program
// rather than per-module, so two files never collide on a generated symbol.
type Lowerer struct {
	program   Program
	bootstrap bool

	currentFunction string
	compareCounter  int
	callSiteCounter int
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// When 'bootstrap' is true the emitted program is prefixed with the standard
// 'SP=256; call Sys.init 0' sequence expected to run before any user code.
func NewLowerer(p Program, bootstrap bool) Lowerer {
	return Lowerer{program: p, bootstrap: bootstrap}
}

func (l *Lowerer) nextCompareLabel() string {
	label := fmt.Sprintf("CONTINUE%d", l.compareCounter)
	l.compareCounter++
	return label
}

// nextCallSiteLabel mints a fresh return-address label for a 'call', scoped to the
// enclosing function (the caller), not the callee: two call sites to the same callee
// from different functions must not collide, but a callee can be called from many
// places and has no say in how its callers name their return addresses.
func (l *Lowerer) nextCallSiteLabel() string {
	label := fmt.Sprintf("ret.%d", l.callSiteCounter)
	l.callSiteCounter++
	return l.qualifyLabel(label)
}

// Triggers the lowering process, module by module in lexicographic order (so the
// emitted program is deterministic regardless of directory iteration order).
func (l *Lowerer) Lower() (asm.Program, error) {
	program := asm.Program{}

	if l.bootstrap {
		program = append(program,
			asm.AInstruction{Location: "256"}, asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: "SP"}, asm.CInstruction{Dest: "M", Comp: "D"},
		)
		program = append(program, l.buildCall("Sys.init", 0, "Bootstrap$ret")...)
	}

	names := make([]string, 0, len(l.program))
	for name := range l.program {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l.currentFunction = ""
		instructions, err := l.lowerModule(name, l.program[name])
		if err != nil {
			return nil, err
		}
		program = append(program, instructions...)
	}

	return program, nil
}

// Lowers a single module/file, iterating its operations in source order.
func (l *Lowerer) lowerModule(name string, module Module) ([]asm.Instruction, error) {
	instructions := []asm.Instruction{}

	for _, operation := range module {
		var generated []asm.Instruction
		var err error

		switch op := operation.(type) {
		case MemoryOp:
			generated, err = l.handleMemoryOp(name, op)
		case ArithmeticOp:
			generated, err = l.handleArithmeticOp(op)
		case LabelOp:
			generated = l.handleLabelOp(op)
		case GotoOp:
			generated = l.handleGotoOp(op)
		case IfGotoOp:
			generated = l.handleIfGotoOp(op)
		case FunctionOp:
			generated = l.handleFunctionOp(op)
		case CallOp:
			generated = l.handleCallOp(op)
		case ReturnOp:
			generated = l.handleReturnOp()
		default:
			err = fmt.Errorf("unrecognized operation '%T'", operation)
		}

		if err != nil {
			return nil, fmt.Errorf("module '%s': %w", name, err)
		}
		instructions = append(instructions, generated...)
	}

	return instructions, nil
}

// loadSegmentValueIntoD leaves the value referenced by 'segment'/'offset' in the D
// register, ready to be pushed onto the stack by 'pushD'.
func (l *Lowerer) loadSegmentValueIntoD(moduleName string, segment SegmentType, offset uint16) ([]asm.Instruction, error) {
	if segment == Constant {
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "D", Comp: "A"},
		}, nil
	}

	if base, dynamic := dynamicBaseRegister[segment]; dynamic {
		return []asm.Instruction{
			asm.AInstruction{Location: base},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "A", Comp: "D+A"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, nil
	}

	address, err := fixedSegmentAddress(moduleName, segment, offset)
	if err != nil {
		return nil, err
	}
	return []asm.Instruction{
		asm.AInstruction{Location: address},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}, nil
}

// Specialized function to convert a 'vm.MemoryOp' into its Assembler equivalent.
func (l *Lowerer) handleMemoryOp(moduleName string, op MemoryOp) ([]asm.Instruction, error) {
	switch op.Operation {
	case Push:
		load, err := l.loadSegmentValueIntoD(moduleName, op.Segment, op.Offset)
		if err != nil {
			return nil, err
		}
		return append(load, pushD()...), nil

	case Pop:
		if op.Segment == Constant {
			return nil, fmt.Errorf("cannot pop into the 'constant' segment")
		}

		if base, dynamic := dynamicBaseRegister[op.Segment]; dynamic {
			instructions := []asm.Instruction{
				asm.AInstruction{Location: base},
				asm.CInstruction{Dest: "D", Comp: "M"},
				asm.AInstruction{Location: fmt.Sprint(op.Offset)},
				asm.CInstruction{Dest: "D", Comp: "D+A"},
				asm.AInstruction{Location: "R13"},
				asm.CInstruction{Dest: "M", Comp: "D"},
			}
			instructions = append(instructions, popIntoD()...)
			instructions = append(instructions,
				asm.AInstruction{Location: "R13"},
				asm.CInstruction{Dest: "A", Comp: "M"},
				asm.CInstruction{Dest: "M", Comp: "D"},
			)
			return instructions, nil
		}

		address, err := fixedSegmentAddress(moduleName, op.Segment, op.Offset)
		if err != nil {
			return nil, err
		}
		instructions := popIntoD()
		instructions = append(instructions,
			asm.AInstruction{Location: address},
			asm.CInstruction{Dest: "M", Comp: "D"},
		)
		return instructions, nil

	default:
		return nil, fmt.Errorf("unrecognized OperationType '%s'", op.Operation)
	}
}

// Specialized function to convert a 'vm.ArithmeticOp' into its Assembler equivalent.
func (l *Lowerer) handleArithmeticOp(op ArithmeticOp) ([]asm.Instruction, error) {
	switch op.Operation {
	case Neg, Not:
		comp := "-M"
		if op.Operation == Not {
			comp = "!M"
		}
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil

	case Add, Sub, And, Or:
		comps := map[ArithOpType]string{Add: "D+M", Sub: "M-D", And: "D&M", Or: "D|M"}
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "M", Comp: comps[op.Operation]},
		}, nil

	case Eq, Gt, Lt:
		jumps := map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}
		label := l.nextCompareLabel()
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "D", Comp: "M-D"},
			asm.CInstruction{Dest: "M", Comp: "-1"},
			asm.AInstruction{Location: label},
			asm.CInstruction{Comp: "D", Jump: jumps[op.Operation]},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.LabelDecl{Name: label},
		}, nil

	default:
		return nil, fmt.Errorf("unrecognized ArithOpType '%s'", op.Operation)
	}
}

// qualifyLabel scopes a user-given label to the function it was declared in, so that
// two functions can freely reuse the same label name without colliding.
func (l *Lowerer) qualifyLabel(name string) string {
	if l.currentFunction == "" {
		return name
	}
	return l.currentFunction + "$" + name
}

func (l *Lowerer) handleLabelOp(op LabelOp) []asm.Instruction {
	return []asm.Instruction{asm.LabelDecl{Name: l.qualifyLabel(op.Name)}}
}

func (l *Lowerer) handleGotoOp(op GotoOp) []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: l.qualifyLabel(op.Label)},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	}
}

func (l *Lowerer) handleIfGotoOp(op IfGotoOp) []asm.Instruction {
	instructions := popIntoD()
	return append(instructions,
		asm.AInstruction{Location: l.qualifyLabel(op.Label)},
		asm.CInstruction{Comp: "D", Jump: "JNE"},
	)
}

// Specialized function to convert a 'vm.FunctionOp' into its Assembler equivalent.
// Zero-initializes 'NumLocals' local slots via the same mechanism as 'push constant 0'.
func (l *Lowerer) handleFunctionOp(op FunctionOp) []asm.Instruction {
	l.currentFunction = op.Name

	instructions := []asm.Instruction{asm.LabelDecl{Name: op.Name}}
	for i := uint16(0); i < op.NumLocals; i++ {
		instructions = append(instructions,
			asm.AInstruction{Location: "0"},
			asm.CInstruction{Dest: "D", Comp: "A"},
		)
		instructions = append(instructions, pushD()...)
	}
	return instructions
}

func (l *Lowerer) handleCallOp(op CallOp) []asm.Instruction {
	return l.buildCall(op.Name, op.NumArgs, l.nextCallSiteLabel())
}

// buildCall implements the calling convention shared by 'call' and the bootstrap's
// implicit call to 'Sys.init': push the return address and the caller's segment
// pointers, reposition ARG/LCL for the callee, then jump to it.
func (l *Lowerer) buildCall(name string, numArgs uint16, returnLabel string) []asm.Instruction {
	instructions := []asm.Instruction{
		asm.AInstruction{Location: returnLabel},
		asm.CInstruction{Dest: "D", Comp: "A"},
	}
	instructions = append(instructions, pushD()...)

	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		instructions = append(instructions,
			asm.AInstruction{Location: reg},
			asm.CInstruction{Dest: "D", Comp: "M"},
		)
		instructions = append(instructions, pushD()...)
	}

	instructions = append(instructions,
		asm.AInstruction{Location: fmt.Sprint(numArgs + 5)},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M-D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},

		asm.LabelDecl{Name: returnLabel},
	)
	return instructions
}

// Specialized function to convert a 'vm.ReturnOp' into its Assembler equivalent.
// Uses R13/R14 as the 'FRAME'/'RET' pseudo-registers while tearing down the frame.
func (l *Lowerer) handleReturnOp() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "LCL"}, asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"}, asm.CInstruction{Dest: "M", Comp: "D"}, // FRAME = LCL

		asm.AInstruction{Location: "5"}, asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"}, asm.CInstruction{Dest: "M", Comp: "D"}, // RET = *(FRAME-5)

		asm.AInstruction{Location: "SP"}, asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "ARG"}, asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"}, // *ARG = pop()

		asm.AInstruction{Location: "ARG"}, asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"}, asm.CInstruction{Dest: "M", Comp: "D"}, // SP = ARG+1

		asm.AInstruction{Location: "R13"}, asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "THAT"}, asm.CInstruction{Dest: "M", Comp: "D"}, // THAT = *(FRAME-1)

		asm.AInstruction{Location: "R13"}, asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "THIS"}, asm.CInstruction{Dest: "M", Comp: "D"}, // THIS = *(FRAME-2)

		asm.AInstruction{Location: "R13"}, asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "ARG"}, asm.CInstruction{Dest: "M", Comp: "D"}, // ARG = *(FRAME-3)

		asm.AInstruction{Location: "R13"}, asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"}, asm.CInstruction{Dest: "M", Comp: "D"}, // LCL = *(FRAME-4)

		asm.AInstruction{Location: "R14"}, asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"}, // goto RET
	}
}
