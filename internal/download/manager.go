package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwhitmer/cdm-audio-downloader/internal/audio"
	"github.com/jwhitmer/cdm-audio-downloader/internal/cdm"
	"github.com/jwhitmer/cdm-audio-downloader/internal/config"
	cdmhttp "github.com/jwhitmer/cdm-audio-downloader/internal/http"
	ioutils "github.com/jwhitmer/cdm-audio-downloader/internal/io"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
	"github.com/jwhitmer/cdm-audio-downloader/internal/plan"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Options are run-level switches beyond the persisted settings.
type Options struct {
	// PrintURLs lists resolved titles and media URLs without
	// downloading.
	PrintURLs bool

	// Aria2cList, when non-empty, receives one resolved media URL per
	// line in aria2c input-file format.
	Aria2cList string

	// DryRun resolves and plans destinations but downloads and tags
	// nothing.
	DryRun bool
}

// Stats are the aggregate counts reported at batch completion.
type Stats struct {
	Found      int
	Resolved   int
	Downloaded int
	Skipped    int

	TaggedUpdated     int
	TaggedOverwritten int
	TaggedSkipped     int
	TagFailures       int

	PrintedURLs   int
	ReceivedBytes int64
}

// Manager coordinates the sequential record pipeline. There is no
// shared mutable state across records and no concurrent fetching; the
// mutex exists only so a UI may poll Stats while Run is in flight.
type Manager struct {
	settings *config.Settings
	opts     Options

	client   *cdmhttp.Client
	searcher *cdm.Searcher
	fetcher  *cdm.Fetcher
	resolver *cdm.Resolver
	planner  *plan.Planner
	tagger   *audio.Tagger
	images   *ioutils.ImageService
	dumper   *ioutils.Dumper

	records   []cdm.Record
	ariaLines []string

	mu    sync.Mutex
	stats Stats

	onProgress func(ProgressEvent)
}

// NewManager creates a Manager wired from settings. The retag policy
// string must already be validated by the caller (ParsePolicy).
func NewManager(settings *config.Settings, policy audio.Policy, opts Options, onProgress func(ProgressEvent)) *Manager {
	m := &Manager{
		settings:   settings,
		opts:       opts,
		client:     cdmhttp.NewClient(),
		planner:    plan.NewPlanner(settings.OutputRoot),
		tagger:     audio.NewTagger(policy),
		images:     ioutils.NewImageService(),
		dumper:     ioutils.NewDumper(settings.DumpJSONDir),
		onProgress: onProgress,
	}

	warnf := func(format string, args ...any) {
		m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: LevelWarning})
	}
	verbosef := func(format string, args ...any) {
		m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: LevelVerbose})
	}

	m.searcher = cdm.NewSearcher(m.client, settings.BaseURL, settings.PageSize,
		settings.MaxRecords, settings.RequestDelay())
	m.fetcher = cdm.NewFetcher(m.client, settings.BaseURL, m.dumper, warnf)
	m.resolver = cdm.NewResolver(m.fetcher, settings.BaseURL, settings.AcceptAnyAudio(), verbosef)

	return m
}

// Initialize runs the paged search and stores the raw records.
func (m *Manager) Initialize(ctx context.Context, collection, query string) error {
	if collection == "" {
		collection = m.settings.DefaultCollection
	}

	records, err := m.searcher.Search(ctx, collection, query)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no results for %q in collection %q", query, collection)
	}

	m.records = records
	m.setStats(func(s *Stats) { s.Found = len(records) })
	m.dumper.DumpNamed("_search_items", records)

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d record(s) for %q in collection %q", len(records), query, collection),
		Level:   LevelInfo,
	})
	return nil
}

// Run processes every record sequentially: one record is fully
// resolved, downloaded and tagged before the next begins, with the
// configured delay after each top-level record. Per-record failures
// are counted and reported but never abort the batch.
func (m *Manager) Run(ctx context.Context) error {
	for i, rec := range m.records {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.processRecord(ctx, rec)

		if i < len(m.records)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.settings.RequestDelay()):
			}
		}
	}

	if m.opts.Aria2cList != "" {
		if err := ioutils.WriteFile(m.opts.Aria2cList, []byte(strings.Join(m.ariaLines, "\n")+"\n")); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing aria2c list: %v", err), Level: LevelError})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote aria2c URL list: %s", m.opts.Aria2cList), Level: LevelSuccess})
		}
	}

	return nil
}

// Stats returns a snapshot of the aggregate counts.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Summary renders the completion report.
func (m *Manager) Summary() string {
	s := m.Stats()
	if m.opts.PrintURLs {
		return fmt.Sprintf("Printed %d media URL(s).", s.PrintedURLs)
	}
	return fmt.Sprintf("Done. Downloaded %d file(s) (%s) to %s; resolved %d/%d, skipped %d; tags updated %d, overwritten %d, skipped %d, failed %d",
		s.Downloaded, humanize.Bytes(uint64(s.ReceivedBytes)), m.settings.OutputRoot,
		s.Resolved, s.Found, s.Skipped,
		s.TaggedUpdated, s.TaggedOverwritten, s.TaggedSkipped, s.TagFailures)
}

// processRecord runs the full pipeline for one search record. All
// failures are local to the record.
func (m *Manager) processRecord(ctx context.Context, rec cdm.Record) {
	id, err := cdm.ResolveIdentity(rec, m.settings.DefaultCollection)
	if err != nil {
		m.skip("skip: %v", err)
		return
	}

	title := rec.Str("title")
	if title == "" {
		title = "item_" + id.Pointer
	}

	resolved, err := m.resolver.Resolve(ctx, id, title)
	if err != nil {
		m.skip("skip: %v", err)
		return
	}
	m.setStats(func(s *Stats) { s.Resolved++ })

	sourcePage := resolved.Record.Str("find")
	if sourcePage == "" {
		sourcePage = m.fetcher.ItemPageURL(resolved.Identity)
	}

	tags := cdm.Synthesize(resolved.Record, resolved.Title, sourcePage, m.settings.AlbumOverride())
	if tags.SourceID == "" {
		tags.SourceID = resolved.Identity.Pointer
	}

	if m.opts.PrintURLs {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("%s\n%s", tags.Title, resolved.Candidate.URL),
			Level:   LevelInfo,
		})
		m.setStats(func(s *Stats) { s.PrintedURLs++ })
		m.ariaLines = append(m.ariaLines, resolved.Candidate.URL)
		return
	}

	ext := resolved.Candidate.Extension(!m.settings.AcceptAnyAudio())
	dest, err := m.planner.Plan(tags, resolved.Identity, ext)
	if err != nil {
		m.skip("skip %s: planning destination: %v", resolved.Identity, err)
		return
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("pick %s -> %s (mime %q)", resolved.Identity, dest, resolved.Candidate.MIME),
		Level:   LevelInfo,
	})

	if m.opts.Aria2cList != "" {
		m.ariaLines = append(m.ariaLines, resolved.Candidate.URL)
	}
	if m.opts.DryRun {
		return
	}

	if ioutils.FileExists(dest) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("exists: %s", filepath.Base(dest)), Level: LevelVerbose})
	} else {
		if err := m.downloadTo(ctx, resolved.Candidate.URL, dest); err != nil {
			m.skip("error downloading %q: %v", tags.Title, err)
			return
		}
		m.setStats(func(s *Stats) { s.Downloaded++ })
		m.progress(ProgressEvent{Message: fmt.Sprintf("downloaded: %s", filepath.Base(dest)), Level: LevelSuccess})
	}

	if strings.EqualFold(ext, ".mp3") && ioutils.FileExists(dest) {
		m.tagFile(ctx, dest, tags, resolved.Identity)
	}
}

// downloadTo streams the media URL to its destination, accumulating
// byte totals for the progress display.
func (m *Manager) downloadTo(ctx context.Context, url, dest string) error {
	var last int64
	return m.client.DownloadFile(ctx, url, dest, func(written, total int64) {
		delta := written - last
		last = written
		m.setStats(func(s *Stats) { s.ReceivedBytes += delta })
	})
}

// tagFile applies ID3 tags (and optional thumbnail art) to a
// downloaded MP3. Tagging failures are counted separately and never
// roll back the download.
func (m *Manager) tagFile(ctx context.Context, dest string, tags model.TagSet, id model.Identity) {
	var artwork []byte
	if m.settings.SaveCoverArtInTags {
		artwork = m.fetchArtwork(ctx, id)
	}

	result, err := m.tagger.Apply(dest, tags, artwork)
	if err != nil {
		m.setStats(func(s *Stats) { s.TagFailures++ })
		m.progress(ProgressEvent{Message: fmt.Sprintf("tag %s: %v", filepath.Base(dest), err), Level: LevelWarning})
		return
	}

	m.setStats(func(s *Stats) {
		switch result {
		case audio.ResultUpdated:
			s.TaggedUpdated++
		case audio.ResultOverwritten:
			s.TaggedOverwritten++
		case audio.ResultSkipped:
			s.TaggedSkipped++
		}
	})
	m.progress(ProgressEvent{Message: fmt.Sprintf("tag %s: %s", filepath.Base(dest), result), Level: LevelVerbose})
}

// fetchArtwork retrieves and resizes the item thumbnail for embedding.
// Failures only mean no artwork.
func (m *Manager) fetchArtwork(ctx context.Context, id model.Identity) []byte {
	url := fmt.Sprintf("%s/digital/api/singleitem/collection/%s/id/%s/thumbnail",
		m.settings.BaseURL, id.Alias, id.Pointer)

	raw, err := m.client.DownloadBytes(ctx, url)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("thumbnail %s: %v", id, err), Level: LevelVerbose})
		return nil
	}

	artwork, err := m.images.ResizeImage(raw, m.settings.CoverArtMaxSize, m.settings.CoverArtMaxSize)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("thumbnail %s: %v", id, err), Level: LevelVerbose})
		return nil
	}
	return artwork
}

func (m *Manager) skip(format string, args ...any) {
	m.setStats(func(s *Stats) { s.Skipped++ })
	m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: LevelWarning})
}

func (m *Manager) setStats(update func(*Stats)) {
	m.mu.Lock()
	update(&m.stats)
	m.mu.Unlock()
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
