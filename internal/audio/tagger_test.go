package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{"skip", PolicySkip, false},
		{"update", PolicyUpdate, false},
		{"overwrite", PolicyOverwrite, false},
		{"", PolicySkip, true},
		{"UPDATE", PolicySkip, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// newTestFile creates a file the tagger can open. id3v2 treats a file
// without a tag header as untagged and prepends a fresh tag on save.
func newTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfbFAKE-MPEG-FRAMES"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFrame(t *testing.T, path, id string) string {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()
	return tag.GetTextFrame(id).Text
}

func TestTagger_SkipPolicy(t *testing.T) {
	path := newTestFile(t)
	before, _ := os.ReadFile(path)

	result, err := NewTagger(PolicySkip).Apply(path, model.TagSet{Title: "T"}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result != ResultSkipped {
		t.Errorf("result = %v, want skipped", result)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("skip policy modified the file")
	}
}

func TestTagger_OverwriteWritesFrames(t *testing.T) {
	path := newTestFile(t)

	tags := model.TagSet{
		Title:     "Old Tune",
		Artist:    "Fiddler Joe",
		Album:     "Berea Collection",
		Year:      "1923",
		Genre:     "Folk music",
		Comment:   "Field recording.\nSource: https://host/page",
		SourceURL: "https://host/page",
		SourceID:  "512",
	}

	result, err := NewTagger(PolicyOverwrite).Apply(path, tags, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result != ResultOverwritten {
		t.Errorf("result = %v, want overwritten", result)
	}

	if got := readFrame(t, path, "TIT2"); got != "Old Tune" {
		t.Errorf("TIT2 = %q, want Old Tune", got)
	}
	if got := readFrame(t, path, "TPE1"); got != "Fiddler Joe" {
		t.Errorf("TPE1 = %q, want Fiddler Joe", got)
	}
	if got := readFrame(t, path, "TDRC"); got != "1923" {
		t.Errorf("TDRC = %q, want 1923", got)
	}
}

func TestTagger_UpdateDoesNotClobber(t *testing.T) {
	path := newTestFile(t)

	first := model.TagSet{Title: "Original Title", Artist: "Original Artist"}
	if _, err := NewTagger(PolicyOverwrite).Apply(path, first, nil); err != nil {
		t.Fatalf("seed Apply: %v", err)
	}

	// Update fills the empty album but must leave title and artist.
	second := model.TagSet{Title: "New Title", Artist: "New Artist", Album: "New Album"}
	result, err := NewTagger(PolicyUpdate).Apply(path, second, nil)
	if err != nil {
		t.Fatalf("update Apply: %v", err)
	}
	if result != ResultUpdated {
		t.Errorf("result = %v, want updated", result)
	}

	if got := readFrame(t, path, "TIT2"); got != "Original Title" {
		t.Errorf("TIT2 = %q, update clobbered an existing frame", got)
	}
	if got := readFrame(t, path, "TALB"); got != "New Album" {
		t.Errorf("TALB = %q, update did not fill the empty frame", got)
	}
}

func TestTagger_OverwriteDeduplicatesIdentifierFrames(t *testing.T) {
	path := newTestFile(t)

	tags := model.TagSet{Title: "T", SourceURL: "https://host/page", SourceID: "512"}
	tagger := NewTagger(PolicyOverwrite)

	if _, err := tagger.Apply(path, tags, nil); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	tags.SourceURL = "https://host/new-page"
	if _, err := tagger.Apply(path, tags, nil); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	var sourceURLs []string
	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		if udf, ok := f.(id3v2.UserDefinedTextFrame); ok && udf.Description == "SOURCE_URL" {
			sourceURLs = append(sourceURLs, udf.Value)
		}
	}

	if len(sourceURLs) != 1 {
		t.Fatalf("got %d SOURCE_URL frames, want 1", len(sourceURLs))
	}
	if sourceURLs[0] != "https://host/new-page" {
		t.Errorf("SOURCE_URL = %q, want the latest value", sourceURLs[0])
	}
}
