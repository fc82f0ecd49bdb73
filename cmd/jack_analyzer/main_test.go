package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJackFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %s", path, err)
	}
	return path
}

func TestJackAnalyzer(t *testing.T) {
	t.Run("single file emits a sibling parse-tree document", func(t *testing.T) {
		dir := t.TempDir()
		writeJackFixture(t, dir, "Main.jack", `class Main { function void main() { return; } }`)

		status := Handler([]string{filepath.Join(dir, "Main.jack")}, nil)
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(filepath.Join(dir, "MainCopy.xml"))
		if err != nil {
			t.Fatalf("expected a MainCopy.xml sibling document: %s", err)
		}
		if !strings.Contains(string(got), "<class>") || !strings.Contains(string(got), "<subroutineDec>") {
			t.Fatalf("expected the parse tree document to contain class/subroutineDec elements, got:\n%s", got)
		}
	})

	t.Run("tokens-only emits the flat token stream", func(t *testing.T) {
		dir := t.TempDir()
		writeJackFixture(t, dir, "Main.jack", `class Main { function void main() { return; } }`)

		status := Handler([]string{filepath.Join(dir, "Main.jack")}, map[string]string{"tokens-only": "true"})
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		got, err := os.ReadFile(filepath.Join(dir, "MainCopy.xml"))
		if err != nil {
			t.Fatalf("expected a MainCopy.xml sibling document: %s", err)
		}
		if !strings.HasPrefix(string(got), "<tokens>") {
			t.Fatalf("expected a flat <tokens> document, got:\n%s", got)
		}
		if strings.Contains(string(got), "<class>") {
			t.Fatalf("tokens-only mode must not contain parse-tree elements, got:\n%s", got)
		}
	})

	t.Run("directory input is walked recursively", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "nested")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("failed to create nested directory: %s", err)
		}

		writeJackFixture(t, dir, "Main.jack", `class Main { function void main() { return; } }`)
		writeJackFixture(t, sub, "Helper.jack", `class Helper { function void run() { return; } }`)

		status := Handler([]string{dir}, nil)
		if status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		for _, path := range []string{filepath.Join(dir, "MainCopy.xml"), filepath.Join(sub, "HelperCopy.xml")} {
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("expected output document at %s: %s", path, err)
			}
		}
	})
}
