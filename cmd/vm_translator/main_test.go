package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %s", path, err)
	}
	return path
}

func TestVMTranslator(t *testing.T) {
	t.Run("single-file mode never bootstraps", func(t *testing.T) {
		dir := t.TempDir()
		input := writeFixture(t, dir, "SimpleAdd.vm", "push constant 7\npush constant 8\nadd\n")
		output := filepath.Join(dir, "SimpleAdd.asm")

		status := Handler([]string{input}, map[string]string{"output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file: %s", err)
		}
		if strings.Contains(string(got), "Sys.init") {
			t.Fatalf("single-file mode must never emit a Sys.init bootstrap call")
		}
		if !strings.Contains(string(got), "@7") || !strings.Contains(string(got), "@8") {
			t.Fatalf("expected pushed constants to appear as Assembler literals, got:\n%s", got)
		}
	})

	t.Run("directory mode always bootstraps", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "Sys.vm", "function Sys.init 0\ncall Sys.init 0\n")
		output := filepath.Join(dir, "Sys.asm")

		status := Handler([]string{dir}, map[string]string{"output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file: %s", err)
		}
		lines := strings.Split(strings.TrimSpace(string(got)), "\n")
		if lines[0] != "@256" {
			t.Fatalf("expected the first instruction to set SP to 256, got %q", lines[0])
		}
		if !strings.Contains(string(got), "Sys.init") {
			t.Fatalf("expected the bootstrap prelude to call Sys.init, got:\n%s", got)
		}
	})

	t.Run("multiple modules, static segment scoped per module", func(t *testing.T) {
		dir := t.TempDir()
		first := writeFixture(t, dir, "Foo.vm", "push constant 1\npop static 0\n")
		second := writeFixture(t, dir, "Bar.vm", "push constant 2\npop static 0\n")
		output := filepath.Join(dir, "out.asm")

		status := Handler([]string{first, second}, map[string]string{"output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file: %s", err)
		}
		if !strings.Contains(string(got), "@Foo.0") || !strings.Contains(string(got), "@Bar.0") {
			t.Fatalf("expected static variables scoped by module name, got:\n%s", got)
		}
	})

	t.Run("dump-ir re-serializes the parsed program instead of lowering it", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "Main.vm", "push constant 7\npush constant 8\nadd\n")
		output := filepath.Join(dir, "Main.ir")

		status := Handler([]string{filepath.Join(dir, "Main.vm")}, map[string]string{"output": output, "dump-ir": "true"})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file: %s", err)
		}
		if !strings.Contains(string(got), "// module Main") {
			t.Fatalf("expected a module marker, got:\n%s", got)
		}
		if !strings.Contains(string(got), "push constant 7") || !strings.Contains(string(got), "add") {
			t.Fatalf("expected the re-serialized VM text, not Assembler, got:\n%s", got)
		}
		if strings.Contains(string(got), "@7") {
			t.Fatalf("dump-ir must not lower to Assembler, got:\n%s", got)
		}
	})

	t.Run("directory input is expanded to its .vm members", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "One.vm", "push constant 1\npop local 0\n")
		writeFixture(t, dir, "Two.vm", "push constant 2\npop local 0\n")
		writeFixture(t, dir, "readme.txt", "not a vm file")
		output := filepath.Join(dir, "out.asm")

		status := Handler([]string{dir}, map[string]string{"output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file: %s", err)
		}
		lines := strings.Split(strings.TrimSpace(string(got)), "\n")
		if lines[0] != "@256" {
			t.Fatalf("expected directory mode to auto-bootstrap, got first instruction %q", lines[0])
		}
	})
}
