package driver

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	forEachInput  = "items.forEach(x => log(x));\n"
	forEachOutput = "const _arr = items;\n" +
		"for (let _i = 0; _i < _arr.length; _i++) {\n" +
		"  const x = _arr[_i];\n" +
		"  log(x);\n" +
		"}\n"
	plainInput = "log(1);\n"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.js":              plainInput,
		"b.txt":             "not js",
		"sub/c.mjs":         plainInput,
		"node_modules/d.js": plainInput,
		".git/e.js":         plainInput,
	})
	explicit := filepath.Join(dir, "b.txt")

	files, err := CollectFiles([]string{dir, explicit, filepath.Join(dir, "a.js")})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "sub", "c.mjs"), explicit}
	if len(files) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, files)
	}
	for i := range expected {
		if files[i] != expected[i] {
			t.Errorf("file %d: expected %s, got %s", i, expected[i], files[i])
		}
	}

	if _, err := CollectFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Errorf("expected an error for a missing path")
	}
}

func TestTransformFilesInPlace(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"one.js": forEachInput,
		"two.js": plainInput,
		"bad.js": "let b = ;",
	})
	paths := []string{filepath.Join(dir, "one.js"), filepath.Join(dir, "two.js"), filepath.Join(dir, "bad.js")}

	d := newDriver(t, Options{InPlace: true, Workers: 2})
	results, err := d.TransformFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Err != nil || results[0].Written != paths[0] {
		t.Errorf("one.js: %+v", results[0])
	}
	if got := readFile(t, paths[0]); got != forEachOutput {
		t.Errorf("one.js content:\n%s", got)
	}
	if results[1].Err != nil || results[1].Written != "" {
		t.Errorf("two.js should be left alone: %+v", results[1])
	}
	var serr *SourceError
	if !stderrors.As(results[2].Err, &serr) {
		t.Errorf("bad.js: expected *SourceError, got %v", results[2].Err)
	}

	// A second run sees the rewritten file and changes nothing
	results, _ = d.TransformFiles(context.Background(), paths[:1])
	if results[0].Err != nil || results[0].Output.Changed() || results[0].Written != "" {
		t.Errorf("second run: %+v", results[0])
	}
}

func TestTransformFilesOutDir(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	writeTree(t, dir, map[string]string{"one.js": forEachInput, "two.js": plainInput})
	paths := []string{filepath.Join(dir, "one.js"), filepath.Join(dir, "two.js")}

	d := newDriver(t, Options{OutDir: out})
	results, err := d.TransformFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range results {
		if res.Err != nil || res.Written == "" {
			t.Errorf("%s: %+v", res.Path, res)
		}
	}
	if got := readFile(t, results[0].Written); got != forEachOutput {
		t.Errorf("one.js output:\n%s", got)
	}
	if got := readFile(t, results[1].Written); got != plainInput {
		t.Errorf("two.js output:\n%s", got)
	}
	if got := readFile(t, paths[0]); got != forEachInput {
		t.Errorf("input was modified:\n%s", got)
	}

	// Unchanged content is served from the cache
	results, _ = d.TransformFiles(context.Background(), paths[:1])
	if !results[0].Output.Cached || results[0].Written != "" {
		t.Errorf("expected a cache hit, got %+v", results[0])
	}
}

func TestTransformFilesOutDirCollision(t *testing.T) {
	a, b, out := t.TempDir(), t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"x.js": forEachInput})
	writeTree(t, b, map[string]string{"x.js": plainInput})
	paths := []string{filepath.Join(a, "x.js"), filepath.Join(b, "x.js")}
	if mirrorPath(paths[0]) != mirrorPath(paths[1]) {
		t.Skip("temporary directories mirror to distinct paths")
	}

	results, err := newDriver(t, Options{OutDir: out}).TransformFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil || results[0].Written == "" {
		t.Fatalf("first input: %+v", results[0])
	}
	if results[1].Err == nil || !strings.Contains(results[1].Err.Error(), "already used by "+paths[0]) {
		t.Errorf("second input: expected a collision error, got %+v", results[1])
	}
	if got := readFile(t, results[0].Written); got != forEachOutput {
		t.Errorf("first output was overwritten:\n%s", got)
	}
}

func TestTransformFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDriver(t, Options{}).TransformFiles(ctx, []string{"a.js"})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMirrorPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"src/a.js", filepath.Join("src", "a.js")},
		{"./b.js", "b.js"},
		{"../x/c.js", "c.js"},
	}
	for _, tt := range tests {
		if got := mirrorPath(filepath.FromSlash(tt.input)); got != tt.expected {
			t.Errorf("mirrorPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
