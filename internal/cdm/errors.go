package cdm

import (
	"fmt"
	"strings"

	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// IdentityError reports a record whose identity could not be resolved
// by any strategy. It carries the record's key set so an operator can
// see which schema variant the installation returned.
type IdentityError struct {
	Title string
	Keys  []string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("cannot extract pointer for %q (record keys: %s)",
		e.Title, strings.Join(e.Keys, ", "))
}

// FetchError reports a transport-level failure while retrieving a
// record. Fetch failures are fatal to the current record only, never
// to the batch, and are not retried.
type FetchError struct {
	Identity model.Identity
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Identity, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NoMediaError reports a record for which no stage of the media
// resolver produced a playable candidate.
type NoMediaError struct {
	Identity model.Identity
	Title    string

	// FilesDump is a truncated rendering of the record's legacy file
	// list, for operator diagnosis. Empty when the record has none.
	FilesDump string
}

func (e *NoMediaError) Error() string {
	msg := fmt.Sprintf("no playable media for %s (%q)", e.Identity, e.Title)
	if e.FilesDump != "" {
		msg += "; files: " + e.FilesDump
	}
	return msg
}
