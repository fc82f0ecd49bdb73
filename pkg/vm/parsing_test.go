package vm_test

import (
	"strings"
	"testing"

	"github.com/n2t-toolchain/n2t/pkg/vm"
)

func TestParserMemoryOp(t *testing.T) {
	test := func(source string, want vm.MemoryOp) {
		module, err := vm.NewParser(strings.NewReader(source)).Parse()
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %s", source, err)
		}
		if len(module) != 1 {
			t.Fatalf("Parse(%q): expected 1 operation, got %d", source, len(module))
		}
		if got := module[0]; got != want {
			t.Fatalf("Parse(%q) = %#v, want %#v", source, got, want)
		}
	}

	t.Run("push", func(t *testing.T) {
		test("push constant 17", vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 17})
		test("push local 0", vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0})
	})

	t.Run("pop", func(t *testing.T) {
		test("pop argument 2", vm.MemoryOp{Operation: vm.Pop, Segment: vm.Argument, Offset: 2})
		test("pop that 1", vm.MemoryOp{Operation: vm.Pop, Segment: vm.That, Offset: 1})
	})
}

func TestParserArithmeticOp(t *testing.T) {
	test := func(source string, want vm.ArithmeticOp) {
		module, err := vm.NewParser(strings.NewReader(source)).Parse()
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %s", source, err)
		}
		if len(module) != 1 {
			t.Fatalf("Parse(%q): expected 1 operation, got %d", source, len(module))
		}
		if got := module[0]; got != want {
			t.Fatalf("Parse(%q) = %#v, want %#v", source, got, want)
		}
	}

	t.Run("binary", func(t *testing.T) {
		test("add", vm.ArithmeticOp{Operation: vm.Add})
		test("eq", vm.ArithmeticOp{Operation: vm.Eq})
	})

	t.Run("unary", func(t *testing.T) {
		test("neg", vm.ArithmeticOp{Operation: vm.Neg})
		test("not", vm.ArithmeticOp{Operation: vm.Not})
	})
}

func TestParserFlowControl(t *testing.T) {
	t.Run("label", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("label LOOP_START")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got, want := module[0], (vm.LabelOp{Name: "LOOP_START"}); got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})

	t.Run("goto", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("goto LOOP_START")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got, want := module[0], (vm.GotoOp{Label: "LOOP_START"}); got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})

	t.Run("if-goto does not partially match goto", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("if-goto CHECK")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(module) != 1 {
			t.Fatalf("expected 1 operation, got %d: %#v", len(module), module)
		}
		if got, want := module[0], (vm.IfGotoOp{Label: "CHECK"}); got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})
}

func TestParserSubroutines(t *testing.T) {
	t.Run("function declaration", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("function SimpleFunction.test 2")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		want := vm.FunctionOp{Name: "SimpleFunction.test", NumLocals: 2}
		if got := module[0]; got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})

	t.Run("function call", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("call Math.multiply 2")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		want := vm.CallOp{Name: "Math.multiply", NumArgs: 2}
		if got := module[0]; got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})

	t.Run("return", func(t *testing.T) {
		module, err := vm.NewParser(strings.NewReader("return")).Parse()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got, want := module[0], (vm.ReturnOp{}); got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	})
}

func TestParserModule(t *testing.T) {
	source := `
		// basic loop: sums 1..n
		function Main.sum 1
		push argument 0
		pop local 0
		label LOOP
		push local 0
		if-goto BODY
		goto END
		label BODY
		push local 0
		push constant 1
		sub
		pop local 0
		goto LOOP
		label END
		push local 0
		return
	`

	module, err := vm.NewParser(strings.NewReader(source)).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := vm.Module{
		vm.FunctionOp{Name: "Main.sum", NumLocals: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: 0},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Local, Offset: 0},
		vm.LabelOp{Name: "LOOP"},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0},
		vm.IfGotoOp{Label: "BODY"},
		vm.GotoOp{Label: "END"},
		vm.LabelOp{Name: "BODY"},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 1},
		vm.ArithmeticOp{Operation: vm.Sub},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Local, Offset: 0},
		vm.GotoOp{Label: "LOOP"},
		vm.LabelOp{Name: "END"},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0},
		vm.ReturnOp{},
	}

	if len(module) != len(want) {
		t.Fatalf("got %d operations, want %d: %#v", len(module), len(want), module)
	}
	for i := range want {
		if module[i] != want[i] {
			t.Fatalf("operation %d: got %#v, want %#v", i, module[i], want[i])
		}
	}
}
