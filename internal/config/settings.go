package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// API settings
	BaseURL           string `json:"base_url"`
	DefaultCollection string `json:"default_collection"`

	// Search pagination
	PageSize   int `json:"page_size"`
	MaxRecords int `json:"max_records"`

	// RequestDelaySeconds is slept after each top-level record (and
	// between search pages) to bound request rate.
	RequestDelaySeconds float64 `json:"request_delay_seconds"`

	// Output layout
	OutputRoot string `json:"output_root"`

	// CollectionLabel builds the album override "<Label> Collection".
	// Empty means no override: the album is derived from the record.
	CollectionLabel string `json:"collection_label"`

	// MediaMode is "audio" (accept any audio) or "mp3" (mp3 only).
	MediaMode string `json:"media_mode"`

	// RetagPolicy is "skip", "update" or "overwrite".
	RetagPolicy string `json:"retag_policy"`

	// DumpJSONDir, when non-empty, receives a raw JSON dump of every
	// fetched record for diagnostics.
	DumpJSONDir string `json:"dump_json_dir"`

	// Cover art settings
	SaveCoverArtInTags bool `json:"save_cover_art_in_tags"`
	CoverArtMaxSize    int  `json:"cover_art_max_size"`

	Verbose bool `json:"verbose"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		BaseURL:             "https://dla.contentdm.oclc.org",
		DefaultCollection:   "berea",
		PageSize:            100,
		MaxRecords:          2000,
		RequestDelaySeconds: 0.2,
		OutputRoot:          filepath.Join(homeDir, "Music", "CONTENTdm"),
		CollectionLabel:     "",
		MediaMode:           "audio",
		RetagPolicy:         "update",
		SaveCoverArtInTags:  false,
		CoverArtMaxSize:     1000,
	}
}

// Load reads settings from a JSON file. A missing file yields
// defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AcceptAnyAudio reports whether the run accepts any audio type or
// only MP3.
func (s *Settings) AcceptAnyAudio() bool {
	return s.MediaMode != "mp3"
}

// AlbumOverride returns the "<Label> Collection" album override, or ""
// when no collection label is configured.
func (s *Settings) AlbumOverride() string {
	label := strings.TrimSpace(s.CollectionLabel)
	if label == "" {
		return ""
	}
	return label + " Collection"
}

// RequestDelay returns the inter-request delay as a duration.
func (s *Settings) RequestDelay() time.Duration {
	return time.Duration(s.RequestDelaySeconds * float64(time.Second))
}
