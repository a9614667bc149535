package download

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwhitmer/cdm-audio-downloader/internal/audio"
	"github.com/jwhitmer/cdm-audio-downloader/internal/config"
)

// newTestServer serves a one-record collection: a search hit pointing
// at a single item with a direct MP3 download.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, doc any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}

	mux.HandleFunc("/digital/api/search/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/page/1/") {
			writeJSON(w, map[string]any{"items": []any{
				map[string]any{"itemId": float64(512), "collectionAlias": "berea", "title": "Old Tune"},
			}})
			return
		}
		writeJSON(w, map[string]any{"items": []any{}})
	})

	mux.HandleFunc("/digital/api/singleitem/collection/berea/id/512", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"title":       "Old Tune",
			"creator":     "Fiddler Joe",
			"date":        "ca. 1923",
			"downloadUri": "/api/dl/tune.mp3",
			"filename":    "tune.mp3",
			"contentType": "audio/mpeg",
		})
	})

	mux.HandleFunc("/digital/api/dl/tune.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("\xff\xfbFAKE-MPEG-FRAMES"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testSettings(t *testing.T, baseURL string) *config.Settings {
	t.Helper()
	settings := config.DefaultSettings()
	settings.BaseURL = baseURL
	settings.DefaultCollection = "berea"
	settings.OutputRoot = t.TempDir()
	settings.RequestDelaySeconds = 0
	settings.RetagPolicy = "update"
	return settings
}

func TestManager_EndToEnd(t *testing.T) {
	server := newTestServer(t)
	settings := testSettings(t, server.URL)

	manager := NewManager(settings, audio.PolicyUpdate, Options{}, nil)
	ctx := context.Background()

	if err := manager.Initialize(ctx, "", "fiddle"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := manager.Stats()
	if stats.Found != 1 || stats.Resolved != 1 || stats.Downloaded != 1 {
		t.Errorf("stats = %+v, want one record found, resolved and downloaded", stats)
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped)
	}
	if stats.TaggedUpdated != 1 {
		t.Errorf("TaggedUpdated = %d, want 1", stats.TaggedUpdated)
	}

	dest := filepath.Join(settings.OutputRoot, "Fiddler Joe", "CONTENTdm Audio", "Old Tune.mp3")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("downloaded file missing at %s: %v", dest, err)
	}
}

func TestManager_RunIsIdempotent(t *testing.T) {
	server := newTestServer(t)
	settings := testSettings(t, server.URL)

	run := func() Stats {
		manager := NewManager(settings, audio.PolicyUpdate, Options{}, nil)
		ctx := context.Background()
		if err := manager.Initialize(ctx, "", "fiddle"); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if err := manager.Run(ctx); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return manager.Stats()
	}

	first := run()
	if first.Downloaded != 1 {
		t.Fatalf("first run Downloaded = %d, want 1", first.Downloaded)
	}

	// Second run plans the same path, finds the file and skips the
	// download; no " (id ...)" duplicate may appear.
	second := run()
	if second.Downloaded != 0 {
		t.Errorf("second run Downloaded = %d, want 0", second.Downloaded)
	}

	albumDir := filepath.Join(settings.OutputRoot, "Fiddler Joe", "CONTENTdm Audio")
	entries, err := os.ReadDir(albumDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("album dir has %v, want exactly one file", names)
	}
}

func TestManager_PrintURLs(t *testing.T) {
	server := newTestServer(t)
	settings := testSettings(t, server.URL)

	var printed []string
	manager := NewManager(settings, audio.PolicyUpdate, Options{PrintURLs: true}, func(event ProgressEvent) {
		printed = append(printed, event.Message)
	})

	ctx := context.Background()
	if err := manager.Initialize(ctx, "", "fiddle"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := manager.Stats()
	if stats.PrintedURLs != 1 {
		t.Errorf("PrintedURLs = %d, want 1", stats.PrintedURLs)
	}
	if stats.Downloaded != 0 {
		t.Errorf("Downloaded = %d, want 0 in print-urls mode", stats.Downloaded)
	}

	found := false
	for _, msg := range printed {
		if strings.Contains(msg, "/digital/api/dl/tune.mp3") {
			found = true
		}
	}
	if !found {
		t.Error("resolved media URL was not printed")
	}

	entries, _ := os.ReadDir(settings.OutputRoot)
	if len(entries) != 0 {
		t.Errorf("print-urls mode wrote files: %v", entries)
	}
}

func TestManager_DryRun(t *testing.T) {
	server := newTestServer(t)
	settings := testSettings(t, server.URL)

	manager := NewManager(settings, audio.PolicyUpdate, Options{DryRun: true}, nil)
	ctx := context.Background()

	if err := manager.Initialize(ctx, "", "fiddle"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats := manager.Stats(); stats.Downloaded != 0 {
		t.Errorf("Downloaded = %d, want 0 in dry-run mode", stats.Downloaded)
	}

	dest := filepath.Join(settings.OutputRoot, "Fiddler Joe", "CONTENTdm Audio", "Old Tune.mp3")
	if _, err := os.Stat(dest); err == nil {
		t.Error("dry run wrote the media file")
	}
}
