package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRealMainFlushesProfileOnError(t *testing.T) {
	prof := filepath.Join(t.TempDir(), "cpu.prof")
	*cpuprofile = prof
	*difficulty = "grandmaster"
	t.Cleanup(func() {
		*cpuprofile = ""
		*difficulty = ""
	})

	if code := realMain(); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	info, err := os.Stat(prof)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("cpu profile is empty, so it was never stopped")
	}
}

func TestRealMainBadProfilePath(t *testing.T) {
	*cpuprofile = filepath.Join(t.TempDir(), "missing", "cpu.prof")
	t.Cleanup(func() { *cpuprofile = "" })

	if code := realMain(); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
