package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPlanner_BasicLayout(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	ts := model.TagSet{Artist: "Fiddler Joe", Album: "Berea Collection", Title: "Old Tune", SourceID: "512"}
	got, err := p.Plan(ts, model.Identity{Alias: "berea", Pointer: "512"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := filepath.Join(root, "Fiddler Joe", "Berea Collection", "Old Tune.mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}

	// The album directory must exist after planning.
	if info, err := os.Stat(filepath.Dir(got)); err != nil || !info.IsDir() {
		t.Errorf("album directory not created: %v", err)
	}
}

func TestPlanner_SanitizesSegments(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	ts := model.TagSet{Artist: "A/B", Album: "Col: 1", Title: "A/B: Song?", SourceID: "1"}
	got, err := p.Plan(ts, model.Identity{Alias: "berea", Pointer: "1"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := filepath.Join(root, "A_B", "Col_ 1", "A_B_ Song_.mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanner_Idempotent(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	ts := model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "42"}
	id := model.Identity{Alias: "berea", Pointer: "42"}

	first, err := p.Plan(ts, id, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// Simulate the download completing, then re-plan the same record.
	touch(t, first)

	second, err := p.Plan(ts, id, ".mp3")
	if err != nil {
		t.Fatalf("re-Plan: %v", err)
	}
	if second != first {
		t.Errorf("re-plan of same record = %q, want the original %q", second, first)
	}
}

func TestPlanner_PreexistingFileDisambiguatesByPointer(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "B", "Song.mp3"))

	p := NewPlanner(root)
	ts := model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "512"}

	got, err := p.Plan(ts, model.Identity{Alias: "berea", Pointer: "512"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := filepath.Join(root, "A", "B", "Song (id 512).mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanner_IdentifierRung(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "B", "Song.mp3"))
	touch(t, filepath.Join(root, "A", "B", "Song (id 512).mp3"))

	p := NewPlanner(root)
	ts := model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "512", Identifier: "ABC-001"}

	got, err := p.Plan(ts, model.Identity{Alias: "berea", Pointer: "512"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := filepath.Join(root, "A", "B", "Song (ABC-001).mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanner_NumericRung(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "B", "Song.mp3"))
	touch(t, filepath.Join(root, "A", "B", "Song (id 512).mp3"))
	touch(t, filepath.Join(root, "A", "B", "Song (2).mp3"))

	p := NewPlanner(root)
	ts := model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "512"}

	got, err := p.Plan(ts, model.Identity{Alias: "berea", Pointer: "512"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := filepath.Join(root, "A", "B", "Song (3).mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanner_DistinctRecordsSameTitle(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	first, err := p.Plan(model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "1"},
		model.Identity{Alias: "berea", Pointer: "1"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := p.Plan(model.TagSet{Artist: "A", Album: "B", Title: "Song", SourceID: "2"},
		model.Identity{Alias: "berea", Pointer: "2"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if first == second {
		t.Fatalf("two records got the same path %q", first)
	}
	want := filepath.Join(root, "A", "B", "Song (id 2).mp3")
	if second != want {
		t.Errorf("second record path = %q, want %q", second, want)
	}
}

// Pointers repeat across collections, so two records that share a
// numeric pointer under different aliases are distinct and must each
// get their own destination.
func TestPlanner_SamePointerDifferentAlias(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	first, err := p.Plan(
		model.TagSet{Artist: "Fiddler Joe", Album: "Berea Collection", Title: "Old Tune", SourceID: "5"},
		model.Identity{Alias: "berea", Pointer: "5"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := p.Plan(
		model.TagSet{Artist: "Singer Sue", Album: "Hutchins Collection", Title: "New Song", SourceID: "5"},
		model.Identity{Alias: "hutchins", Pointer: "5"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if first == second {
		t.Fatalf("distinct records share one destination: %q", first)
	}
	want := filepath.Join(root, "Singer Sue", "Hutchins Collection", "New Song.mp3")
	if second != want {
		t.Errorf("second record path = %q, want %q", second, want)
	}

	// And re-planning either record still returns its own path.
	again, err := p.Plan(
		model.TagSet{Artist: "Fiddler Joe", Album: "Berea Collection", Title: "Old Tune", SourceID: "5"},
		model.Identity{Alias: "berea", Pointer: "5"}, ".mp3")
	if err != nil {
		t.Fatalf("re-Plan: %v", err)
	}
	if again != first {
		t.Errorf("re-plan = %q, want the first record's path %q", again, first)
	}
}

func TestPlanner_EmptyFieldsUsePlaceholders(t *testing.T) {
	root := t.TempDir()
	p := NewPlanner(root)

	got, err := p.Plan(model.TagSet{Title: "Song", SourceID: "1"},
		model.Identity{Alias: "berea", Pointer: "1"}, ".mp3")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := filepath.Join(root, model.UnknownArtist, model.UnknownAlbum, "Song.mp3")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}
