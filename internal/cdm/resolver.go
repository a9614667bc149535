package cdm

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	cdmhttp "github.com/jwhitmer/cdm-audio-downloader/internal/http"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// audioExtensions is the filename allow-list for the "any audio"
// candidacy mode.
var audioExtensions = []string{
	".mp3", ".m4a", ".mp4", ".wav", ".aac", ".aiff", ".aif", ".flac", ".ogg", ".oga",
}

// IsAudioCandidate reports whether a name/MIME pair qualifies as
// downloadable audio. With acceptAnyAudio, any audio/* MIME or a
// filename on the extension allow-list passes; otherwise only MPEG
// audio or .mp3 filenames do.
func IsAudioCandidate(name, mime string, acceptAnyAudio bool) bool {
	name = strings.ToLower(name)
	mime = strings.ToLower(mime)

	if !acceptAnyAudio {
		return strings.Contains(mime, "audio/mpeg") || strings.HasSuffix(name, ".mp3")
	}
	if strings.HasPrefix(mime, "audio/") {
		return true
	}
	for _, ext := range audioExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Resolved is the outcome of media resolution for one record: the
// candidate to download plus the effective record, identity and title
// that all downstream steps (tag synthesis, path planning) must use.
// For compound objects these belong to the winning child, not the
// parent.
type Resolved struct {
	Candidate model.MediaCandidate
	Record    Record
	Identity  model.Identity
	Title     string
}

// Resolver decides whether a record is directly playable, carries a
// legacy file list, or is a compound container of child items.
type Resolver struct {
	fetcher        *Fetcher
	base           string
	acceptAnyAudio bool
	verbosef       Logf
}

// NewResolver creates a Resolver. acceptAnyAudio selects the
// audio-candidacy mode for the whole run. verbosef may be nil.
func NewResolver(fetcher *Fetcher, base string, acceptAnyAudio bool, verbosef Logf) *Resolver {
	if verbosef == nil {
		verbosef = func(string, ...any) {}
	}
	return &Resolver{
		fetcher:        fetcher,
		base:           base,
		acceptAnyAudio: acceptAnyAudio,
		verbosef:       verbosef,
	}
}

// picker attempts to extract a media candidate from a fetched record.
type picker func(rec Record) *model.MediaCandidate

// pickers returns the ordered single-record stages: direct URI, stream
// URI fallback, legacy file list. First success wins.
func (r *Resolver) pickers() []picker {
	return []picker{r.pickDirectURI, r.pickStreamURI, r.pickFromFiles}
}

// Resolve fetches the record for id and walks it through the
// resolution stages. title is the search-result title used as a
// fallback and for compound title prefixing.
//
// Errors are per-record: a *FetchError for transport failures, a
// *NoMediaError when no stage yields a candidate.
func (r *Resolver) Resolve(ctx context.Context, id model.Identity, title string) (*Resolved, error) {
	rec, err := r.fetcher.FetchItem(ctx, id)
	if err != nil {
		return nil, err
	}

	r.verbosef("meta %s downloadUri=%q streamUri=%q", id, rec.Str("downloadUri"), rec.Str("streamUri"))

	if cand := r.pickFromRecord(rec); cand != nil {
		return &Resolved{Candidate: *cand, Record: rec, Identity: id, Title: title}, nil
	}

	if res := r.resolveCompound(ctx, id, title); res != nil {
		return res, nil
	}

	return nil, &NoMediaError{
		Identity:  id,
		Title:     title,
		FilesDump: filesDump(rec),
	}
}

// pickFromRecord runs the ordered non-compound stages against one
// record.
func (r *Resolver) pickFromRecord(rec Record) *model.MediaCandidate {
	for _, pick := range r.pickers() {
		if cand := pick(rec); cand != nil {
			return cand
		}
	}
	return nil
}

// pickDirectURI emits a candidate from the record's primary download
// URI when its name/MIME passes the audio-candidacy predicate.
func (r *Resolver) pickDirectURI(rec Record) *model.MediaCandidate {
	uri := rec.Str("downloadUri")
	if uri == "" {
		return nil
	}
	name := rec.Str("filename")
	mime := rec.Str("contentType")
	if !IsAudioCandidate(name, mime, r.acceptAnyAudio) {
		return nil
	}
	return &model.MediaCandidate{
		URL:           cdmhttp.Absolutize(r.base, uri),
		SuggestedName: name,
		MIME:          mime,
	}
}

// pickStreamURI emits a candidate from the record's streaming URI,
// normalized to a raw-byte endpoint by stripping the trailing /json
// suffix. Streaming endpoints often omit MIME metadata, so no strict
// candidacy check is applied.
func (r *Resolver) pickStreamURI(rec Record) *model.MediaCandidate {
	uri := rec.Str("streamUri")
	if uri == "" {
		return nil
	}
	uri = strings.TrimSuffix(uri, "/json")

	suggested := rec.Str("filename")
	if suggested == "" {
		base := path.Base(strings.SplitN(uri, "?", 2)[0])
		if base != "" && base != "." && base != "/" {
			suggested = base
		} else {
			suggested = "audio"
		}
	}

	return &model.MediaCandidate{
		URL:           cdmhttp.Absolutize(r.base, uri),
		SuggestedName: suggested,
		MIME:          rec.Str("contentType"),
	}
}

// pickFromFiles scans the legacy file descriptor list and emits the
// first entry passing the candidacy predicate, in source-array order.
func (r *Resolver) pickFromFiles(rec Record) *model.MediaCandidate {
	for _, file := range rec.FileEntries() {
		name := file.Str("name")
		mime := file.Str("mime")
		if !IsAudioCandidate(name, mime, r.acceptAnyAudio) {
			continue
		}
		uri := firstNonEmpty(file.Str("download"), file.Str("file"))
		if uri == "" {
			continue
		}
		return &model.MediaCandidate{
			URL:           cdmhttp.Absolutize(r.base, uri),
			SuggestedName: name,
			MIME:          mime,
		}
	}
	return nil
}

// resolveCompound queries the compound-children endpoint and attempts
// each child in order through the non-compound stages. Recursion is
// bounded to one level: children are never themselves checked for
// further children. The first child yielding a candidate wins, and its
// record, identity and title become the effective values downstream;
// the parent contributes only a title prefix.
func (r *Resolver) resolveCompound(ctx context.Context, parent model.Identity, parentTitle string) *Resolved {
	children := r.fetcher.FetchCompoundChildren(ctx, parent)
	if len(children) == 0 {
		return nil
	}
	r.verbosef("compound %s %q with %d child(ren)", parent, parentTitle, len(children))

	for idx, child := range children {
		childID, err := ResolveIdentity(child, parent.Alias)
		if err != nil {
			r.verbosef("child %d of %s: %v", idx+1, parent, err)
			continue
		}

		childRec, err := r.fetcher.FetchItem(ctx, childID)
		if err != nil {
			r.verbosef("child %d of %s: %v", idx+1, parent, err)
			continue
		}

		cand := r.pickFromRecord(childRec)
		if cand == nil {
			continue
		}

		childTitle := firstNonEmpty(childRec.Str("title"), child.Str("title"),
			fmt.Sprintf("%s (part %d)", parentTitle, idx+1))
		title := parentTitle
		if childTitle != "" && !strings.Contains(title, childTitle) {
			title = title + " — " + childTitle
		}

		return &Resolved{Candidate: *cand, Record: childRec, Identity: childID, Title: title}
	}
	return nil
}

// filesDump renders a truncated view of the record's legacy file list
// for skip diagnostics.
func filesDump(rec Record) string {
	files, ok := rec["files"]
	if !ok {
		return ""
	}
	data, err := json.Marshal(files)
	if err != nil {
		return ""
	}
	const maxDump = 800
	if len(data) > maxDump {
		data = data[:maxDump]
	}
	return string(data)
}
