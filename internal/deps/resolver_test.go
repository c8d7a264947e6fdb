package deps

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func notFoundErr(command string) error {
	return &exec.Error{Name: command, Err: exec.ErrNotFound}
}

func TestPathResolverResolvePrefersStoragePath(t *testing.T) {
	binPath := filepath.Join(t.TempDir(), "ffmpeg-custom")
	if err := os.WriteFile(binPath, []byte("ffmpeg"), 0o755); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{
		Name:        "ffmpeg",
		Command:     "ffmpeg",
		StoragePath: binPath,
	})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceStorage {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceStorage)
	}
	if state.ResolvedPath != binPath {
		t.Fatalf("state.ResolvedPath = %q, want %q", state.ResolvedPath, binPath)
	}
}

func TestPathResolverResolveFallsBackToLookPath(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		if file != "ffmpeg" {
			t.Fatalf("LookPath() received %q, want %q", file, "ffmpeg")
		}
		return "/mock/bin/ffmpeg", nil
	}

	state := resolver.Resolve(DependencySpec{Name: "ffmpeg", Command: "ffmpeg"})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceLookPath {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceLookPath)
	}
	if state.ResolvedPath != "/mock/bin/ffmpeg" {
		t.Fatalf("state.ResolvedPath = %q", state.ResolvedPath)
	}
}

func TestPathResolverResolveMissing(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{Name: "npx", Command: "npx"})

	if state.Status != DependencyStatusMissing {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusMissing)
	}
	if state.Error == "" {
		t.Fatal("state.Error is empty")
	}
}

func TestBuildDependencyInventory(t *testing.T) {
	specs := BuildDependencyInventory("")

	if len(specs) != 3 {
		t.Fatalf("got %d specs, want 3", len(specs))
	}
	byID := map[string]DependencySpec{}
	for _, spec := range specs {
		byID[spec.ID] = spec
	}
	for _, id := range []string{"ffmpeg", "ffprobe", "engine"} {
		spec, ok := byID[id]
		if !ok {
			t.Fatalf("inventory missing %q", id)
		}
		if spec.Tier != DependencyTierMust {
			t.Fatalf("%s tier = %q, want must", id, spec.Tier)
		}
	}
	if byID["engine"].Command != "npx" {
		t.Fatalf("default engine command = %q, want npx", byID["engine"].Command)
	}

	custom := BuildDependencyInventory("bunx")
	for _, spec := range custom {
		if spec.ID == "engine" && spec.Command != "bunx" {
			t.Fatalf("engine command = %q, want bunx", spec.Command)
		}
	}
}

func TestIsMissingPathError(t *testing.T) {
	if !isMissingPathError(os.ErrNotExist) {
		t.Fatal("os.ErrNotExist should read as missing")
	}
	if !isMissingPathError(notFoundErr("ffmpeg")) {
		t.Fatal("exec not-found should read as missing")
	}
	if isMissingPathError(errors.New("permission denied")) {
		t.Fatal("permission error should not read as missing")
	}
}

func TestFormatDependencyReport(t *testing.T) {
	states := []DependencyState{
		{
			DependencySpec: DependencySpec{Name: "ffmpeg", Tier: DependencyTierMust, Hint: "install it"},
			Status:         DependencyStatusMissing,
			Error:          "not found",
		},
	}

	report := FormatDependencyReport(states)
	for _, want := range []string{"ffmpeg", "MUST", "missing", "install it"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
