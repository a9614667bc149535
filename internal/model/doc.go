// Package model defines the core data structures used throughout
// the cdm-audio-downloader application.
//
// # Identity
//
// Identity addresses one record inside a CONTENTdm installation:
//
//	id := model.Identity{Alias: "berea", Pointer: "512"}
//	fmt.Println(id) // "berea/512"
//
// # MediaCandidate
//
// MediaCandidate is a resolved, byte-fetchable audio asset:
//
//	c := model.MediaCandidate{URL: url, SuggestedName: "a.mp3", MIME: "audio/mpeg"}
//	ext := c.Extension(false) // ".mp3"
//
// # TagSet
//
// TagSet is the normalized descriptive metadata for one resolved asset.
// The same TagSet instance drives both file placement and ID3 tagging, so
// the on-disk location and the embedded metadata always agree.
package model
