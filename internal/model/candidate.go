package model

import (
	"path"
	"strings"
)

// MediaCandidate represents one concrete byte-fetchable audio asset
// resolved from a record. Candidates are transient: they are created
// and discarded within a single record's processing and never cached
// across records.
type MediaCandidate struct {
	// URL is the absolute download URL.
	URL string

	// SuggestedName is the filename suggested by the record, if any.
	SuggestedName string

	// MIME is the content type hint from the record. Often empty for
	// streaming endpoints.
	MIME string
}

// Extension returns the file extension for the candidate, including
// the dot. The suggested name wins when it carries an extension;
// otherwise ".mp3" is assumed when the candidate looks like MPEG audio
// (or the run is mp3-only), falling back to ".bin".
func (c MediaCandidate) Extension(mp3Only bool) string {
	if ext := path.Ext(c.SuggestedName); ext != "" {
		return strings.ToLower(ext)
	}
	if mp3Only || strings.Contains(strings.ToLower(c.MIME), "mpeg") {
		return ".mp3"
	}
	return ".bin"
}
