// Package plan computes deterministic, collision-free destination
// paths for resolved audio assets under an artist/album/song
// hierarchy.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/jwhitmer/cdm-audio-downloader/internal/io"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// Planner converts tag sets into destination paths, applying a
// disambiguation ladder when a computed path collides with a
// pre-existing file.
//
// The planner remembers every path it has handed out during its
// lifetime, keyed by the record's identity (alias plus pointer, since
// pointers repeat across collections). Planning the same record twice
// returns the same path even after the file has been written, so the
// system's own just-planned target never triggers disambiguation; only
// files that existed beforehand, or paths claimed for a different
// record in this run, do.
type Planner struct {
	root    string
	planned map[string]string
	claimed map[string]bool
}

// NewPlanner creates a Planner rooted at the output directory.
func NewPlanner(root string) *Planner {
	return &Planner{
		root:    root,
		planned: make(map[string]string),
		claimed: make(map[string]bool),
	}
}

// Plan returns the destination path for a resolved record. id is the
// effective identity the tag set was synthesized from. The layout is:
//
//	<root>/<sanitized artist>/<sanitized album>/<sanitized title><ext>
//
// On collision the ladder is walked in order, first free candidate
// wins:
//
//  1. the plain title
//  2. title + " (id <source pointer>)"
//  3. title + " (<identifier>)" when the record has an identifier
//  4. title + " (n)" for n = 2, 3, ...
//
// Intermediate directories are created before returning.
func (p *Planner) Plan(ts model.TagSet, id model.Identity, ext string) (string, error) {
	key := planKey(ts, id)
	if prior, ok := p.planned[key]; ok {
		return prior, nil
	}

	artist := ts.Artist
	if artist == "" {
		artist = model.UnknownArtist
	}
	album := ts.Album
	if album == "" {
		album = model.UnknownAlbum
	}

	dir := filepath.Join(p.root, ioutils.SanitizeFileName(artist), ioutils.SanitizeFileName(album))
	path := p.firstFree(dir, ioutils.SanitizeFileName(ts.Title), ext, ts)

	if err := ioutils.EnsureDir(dir); err != nil {
		return "", err
	}

	p.planned[key] = path
	p.claimed[path] = true
	return path, nil
}

// firstFree walks the disambiguation ladder and returns the first
// non-colliding candidate path.
func (p *Planner) firstFree(dir, title, ext string, ts model.TagSet) string {
	free := func(name string) (string, bool) {
		candidate := filepath.Join(dir, name+ext)
		return candidate, !p.collides(candidate)
	}

	if path, ok := free(title); ok {
		return path
	}
	if ts.SourceID != "" {
		if path, ok := free(fmt.Sprintf("%s (id %s)", title, ts.SourceID)); ok {
			return path
		}
	}
	if id := strings.TrimSpace(ts.Identifier); id != "" {
		if path, ok := free(title + " (" + ioutils.SanitizeFileName(id) + ")"); ok {
			return path
		}
	}
	for n := 2; ; n++ {
		if path, ok := free(fmt.Sprintf("%s (%d)", title, n)); ok {
			return path
		}
	}
}

// collides reports whether the candidate path is taken: either a file
// already exists on disk or this planner claimed it for another
// record.
func (p *Planner) collides(path string) bool {
	return p.claimed[path] || ioutils.FileExists(path)
}

// planKey identifies a record across Plan calls. Pointers are only
// unique within a collection, so the key carries the alias too; tag
// text is the fallback for records without a valid identity.
func planKey(ts model.TagSet, id model.Identity) string {
	if id.Valid() {
		return "id:" + id.String()
	}
	return strings.Join([]string{ts.Artist, ts.Album, ts.Title}, "\x00")
}
