package cdm

import (
	"regexp"
	"strings"

	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// yearPattern matches a plausible 4-digit year (1800-2199) anywhere in
// a date-like string. First match wins.
var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2}|21\d{2})\b`)

// ExtractYear pulls a 4-digit year out of a free-form date string.
// Returns "" when none is found; a missing year is never an error.
func ExtractYear(date string) string {
	return yearPattern.FindString(date)
}

// Synthesize maps a raw record plus context into a normalized TagSet.
// Pure function, no I/O.
//
// Per field, a fixed top-level key is preferred; when absent or empty,
// the dynamic fields list is searched by known short keys or
// human-readable labels (case-insensitive). Title falls back to
// titleFallback and is never empty; artist and album fall back to the
// Unknown placeholders.
//
// albumOverride, when non-empty, wins over any record-derived album
// (callers pass "<Label> Collection" built from the configured
// collection label).
func Synthesize(rec Record, titleFallback, sourceURL, albumOverride string) model.TagSet {
	labels := rec.FieldIndex()

	title := firstNonEmpty(rec.Str("title"), labels["title"], titleFallback, model.UntitledName)
	artist := firstNonEmpty(rec.Str("creator"), rec.Str("contributor"),
		labels["primary performer / group"], labels["creator"], labels["contributor"])
	genre := firstNonEmpty(rec.Str("subject"), labels["subject"])
	desc := firstNonEmpty(rec.Str("description"), labels["description"])
	rights := firstNonEmpty(rec.Str("rights"), labels["rights"])
	composer := rec.Str("creator")

	album := albumOverride
	if album == "" {
		album = firstNonEmpty(rec.Str("collection"), rec.Str("publisher"),
			labels["relation"], labels["holding library"], model.GenericAlbum)
	}

	year := ExtractYear(firstNonEmpty(rec.Str("date"), rec.Str("coverage")))

	var commentLines []string
	if desc != "" {
		commentLines = append(commentLines, desc)
	}
	commentLines = append(commentLines, "Source: "+sourceURL)
	if rights != "" {
		commentLines = append(commentLines, "Rights: "+rights)
	}

	if artist == "" {
		artist = model.UnknownArtist
	}
	if album == "" {
		album = model.UnknownAlbum
	}

	return model.TagSet{
		Title:      title,
		Artist:     artist,
		Album:      album,
		Year:       year,
		Genre:      genre,
		Composer:   composer,
		Comment:    strings.Join(commentLines, "\n"),
		SourceURL:  sourceURL,
		SourceID:   firstNonEmpty(rec.Str("id"), rec.Str("pointer")),
		Identifier: firstNonEmpty(rec.Str("identifier"), labels["identifier"]),
	}
}
