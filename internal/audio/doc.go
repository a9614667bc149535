// Package audio provides the ID3 tagging adapter for downloaded
// files.
//
// The Tagger writes a normalized tag set into an MP3's ID3 frames
// under one of three policies:
//
//   - skip: leave the file untouched
//   - update: fill frames, but never clobber a frame that already
//     holds non-empty text
//   - overwrite: replace frames unconditionally, de-duplicating the
//     custom identifier frames first
//
// Example:
//
//	tagger := audio.NewTagger(audio.PolicyUpdate)
//	result, err := tagger.Apply("/music/song.mp3", tags, artworkBytes)
//	// result is one of ResultSkipped, ResultUpdated, ResultOverwritten
//
// Frames written: TIT2 (title), TPE1 (artist), TALB (album), TCON
// (genre), TCOM (composer), TDRC (year), COMM (comment), plus two
// custom TXXX frames carrying the source URL and the CONTENTdm item
// pointer.
package audio
