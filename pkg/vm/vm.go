package vm

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the VM intermediate language.
//
// We declare a shared 'Operation' interface for every macro operation available for the
// language and we define some other useful top-level struct such as Program and Module.
// Is important to note that a VM program can be composed of multiple translation units
// that can be also referenced as file or modules or also classes.

// A VM Program is just a set of multiple modules/files, in the VM spec each Jack class is
// translated to its own .vm file (just like Java .class file) that can be handled as its
// own translation unit during the compilation or lowering phases. Keyed by module/file
// name (without extension), since the 'static' segment addresses itself by that name.
type Program map[string]Module

// A VM Module is just a linear list of VM operations/instructions
type Module []Operation

// Used to put together all operation in the VM language (Memory, Arithmetic, ... ops).
type Operation interface{}

// ----------------------------------------------------------------------------
// Memory Op

// In memory representation of a Memory operation for the VM language.
//
// In the VM intermediate language there are only two possible memory operation on the stack.
// We could either push a new value taken from the specified segment location on the stack's
// top or take the stack's top and saves its value at the specified segment location.
type MemoryOp struct {
	Operation OperationType // The type of operation, either 'push' or 'pop'
	Segment   SegmentType   // The named memory segment to use (this, that, temp, ...)
	Offset    uint16        // The specific location/offset inside of the memory segment
}

type OperationType string // Enum to manage the operation allowed for a MemoryOp

const (
	Push OperationType = "push"
	Pop  OperationType = "pop"
)

type SegmentType string // Enum to manage the segment accessible for a MemoryOp

const (
	Temp     SegmentType = "temp"     // Real segment used to store intermediate computations
	Constant SegmentType = "constant" // Virtual segment used to access numeric constant

	Local    SegmentType = "local"    // Real segment used to store local function variables
	Static   SegmentType = "static"   // Real segment used to store shared/static variables
	Argument SegmentType = "argument" // Real segment used to store function's argument

	This    SegmentType = "this"    // Virtual segment used to point to a specific memory location
	That    SegmentType = "that"    // Virtual segment used to point to a specific memory location
	Pointer SegmentType = "pointer" // Real segment w/ 2 location used to set the 'this' and 'that' pointers
)

// ----------------------------------------------------------------------------
// Arithmetic Op

// In memory representation of a Arithmetic operation for the VM language.
//
// In the VM intermediate language there are just a handful of operation available.
// In particular each operation acts directly on the top of the stack, of course we have both unary
// and binary operation, the specific management of each op will be handled in the codegen phase.
type ArithmeticOp struct{ Operation ArithOpType }

type ArithOpType string // Enum to manage the operation allowed for an ArithmeticOp

const (
	Eq ArithOpType = "eq" // Comparison operations
	Gt ArithOpType = "gt"
	Lt ArithOpType = "lt"

	Add ArithOpType = "add" // Arithmetic operations
	Sub ArithOpType = "sub"
	Neg ArithOpType = "neg"

	Not ArithOpType = "not" // Bitwise operations
	And ArithOpType = "and"
	Or  ArithOpType = "or"
)

// ----------------------------------------------------------------------------
// Flow control Ops

// In memory representation of a label declaration in the VM language.
//
// Labels are only visible inside the function they're declared in (or, outside any
// function, at module scope); the Lowerer is responsible for qualifying the name
// with the enclosing function before it reaches the Assembler.
type LabelOp struct{ Name string }

// In memory representation of an unconditional jump to a previously declared label.
type GotoOp struct{ Label string }

// In memory representation of a conditional jump: pops the stack's top and jumps
// to 'Label' if the popped value is not zero (Hack's boolean 'true' is -1).
type IfGotoOp struct{ Label string }

// ----------------------------------------------------------------------------
// Subroutine Ops

// In memory representation of a function declaration in the VM language.
//
// 'NumLocals' local variables are zero-initialized on entry, per the calling
// convention, before the function's own statements begin executing.
type FunctionOp struct {
	Name      string
	NumLocals uint16
}

// In memory representation of a function call in the VM language.
//
// 'NumArgs' values are expected to already sit on top of the stack, pushed by the
// caller immediately before the call, in left-to-right order.
type CallOp struct {
	Name    string
	NumArgs uint16
}

// In memory representation of a function return in the VM language.
//
// Tears down the callee's stack frame, restores the caller's saved segment
// pointers and resumes execution at the return address pushed by 'CallOp'.
type ReturnOp struct{}
