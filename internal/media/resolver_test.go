package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveImagesPrefersVideoOverStill(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root,
		"assets/ep-001/images/seg-03-0.mp4",
		"assets/ep-001/images/seg-03-0.png",
		"assets/ep-001/images/seg-03-1.png",
	)

	r := NewResolver(root)
	got := r.ResolveImages("ep-001", 3, 3)

	want := []string{
		"assets/ep-001/images/seg-03-0.mp4",
		"assets/ep-001/images/seg-03-1.png",
	}
	if len(got) != len(want) {
		t.Fatalf("ResolveImages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResolveImages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveArchivalImagesWalksSourceDirs(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root,
		"assets/ep-001/archival/library-of-congress/a.jpg",
		"assets/ep-001/archival/library-of-congress/notes.txt",
		"assets/ep-001/archival/newspaper/b.png",
	)

	r := NewResolver(root)
	got := r.ResolveArchivalImages("ep-001")

	if len(got) != 2 {
		t.Fatalf("ResolveArchivalImages() = %v, want 2 images", got)
	}
	for _, p := range got {
		if strings.HasSuffix(p, ".txt") {
			t.Fatalf("non-image file leaked into results: %q", p)
		}
	}
}

func TestSortedDirFilesFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root,
		"assets/ambient/b.mp3",
		"assets/ambient/a.mp3",
		"assets/ambient/notes.txt",
	)

	r := NewResolver(root)
	got := r.SortedDirFiles("assets/ambient", ".mp3")

	want := []string{"assets/ambient/a.mp3", "assets/ambient/b.mp3"}
	if len(got) != len(want) {
		t.Fatalf("SortedDirFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedDirFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortedDirFilesUsesInjectedReader(t *testing.T) {
	r := NewResolver("/nowhere")
	called := false
	r.readDirFunc = func(string) ([]os.DirEntry, error) {
		called = true
		return nil, os.ErrNotExist
	}

	if got := r.SortedDirFiles("assets/ambient", ".mp3"); got != nil {
		t.Fatalf("SortedDirFiles() on reader error = %v, want nil", got)
	}
	if !called {
		t.Fatal("injected directory reader was not used")
	}
}

func TestInterleaveArchivalEveryN(t *testing.T) {
	images := []string{"g0", "g1", "g2", "g3", "g4"}
	archival := []string{"a0", "a1", "a2"}

	got := InterleaveArchival(images, archival, 2, 0)

	want := []string{"g0", "g1", "a0", "g2", "g3", "a1", "g4"}
	if len(got) != len(want) {
		t.Fatalf("InterleaveArchival() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("InterleaveArchival()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInterleaveArchivalEmptyGeneratedCyclesWithOffset(t *testing.T) {
	archival := []string{"a0", "a1", "a2", "a3"}

	seg2 := InterleaveArchival(nil, archival, 4, 2)
	if len(seg2) == 0 {
		t.Fatal("expected archival fallback for empty generated list")
	}
	if seg2[0] != "a2" {
		t.Fatalf("fallback start = %q, want offset by segment index (a2)", seg2[0])
	}

	seg3 := InterleaveArchival(nil, archival, 4, 3)
	if seg3[0] == seg2[0] {
		t.Fatal("adjacent segments should start at different archival photos")
	}
}

func TestPadImagesFillsToOnePerFiveSeconds(t *testing.T) {
	// 900 frames = 30s at 30fps, 5s per visual -> 6 slots.
	got := PadImages([]string{"a", "b"}, 900)

	if len(got) != 6 {
		t.Fatalf("PadImages() length = %d, want 6", len(got))
	}
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("PadImages() = %v, want to start [a b]", got)
	}
	real, procedural := 0, 0
	for _, p := range got[2:] {
		if strings.HasPrefix(p, ProceduralToken+":") {
			procedural++
		} else {
			real++
		}
	}
	if real != 2 || procedural != 2 {
		t.Fatalf("fill = %d real / %d procedural, want alternating 2/2 (got %v)", real, procedural, got)
	}
}

func TestPadImagesShortSegmentUnchanged(t *testing.T) {
	images := []string{"a", "b", "c"}
	got := PadImages(images, 300) // 10s -> 2 slots, already covered
	if len(got) != 3 {
		t.Fatalf("PadImages() length = %d, want original 3", len(got))
	}
}

func TestPadImagesEmptyListIsAllProcedural(t *testing.T) {
	got := PadImages(nil, 450) // 15s -> 3 slots
	if len(got) != 3 {
		t.Fatalf("PadImages() length = %d, want 3", len(got))
	}
	for _, p := range got {
		if !strings.HasPrefix(p, ProceduralToken+":") {
			t.Fatalf("expected procedural token, got %q", p)
		}
	}
}
