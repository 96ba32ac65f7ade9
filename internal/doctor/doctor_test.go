package doctor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileMissing(t *testing.T) {
	r := checkFile("model file", filepath.Join(t.TempDir(), "nope.bin"))
	if r.Pass {
		t.Fatalf("expected failure for missing file: %+v", r)
	}
}

func TestCheckHookExecutableOptionalWhenUnset(t *testing.T) {
	r := checkHookExecutable("")
	if !r.Pass {
		t.Fatalf("unset hook should pass: %+v", r)
	}
}

func TestCheckHookExecutableRejectsNonExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := checkHookExecutable(path); r.Pass {
		t.Fatalf("non-executable file should fail: %+v", r)
	}
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if r := checkHookExecutable(path); !r.Pass {
		t.Fatalf("executable file should pass: %+v", r)
	}
}

func TestCheckStateDirWritable(t *testing.T) {
	if r := checkStateDir(t.TempDir()); !r.Pass {
		t.Fatalf("temp dir should be writable: %+v", r)
	}
}
