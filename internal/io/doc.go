// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation and file writing
//   - Raw-JSON diagnostic dumps of fetched records
//   - Thumbnail image resizing and JPEG conversion
//
// # Filename Sanitization
//
// Use SanitizeFileName to make a metadata value safe as a path segment:
//
//	safe := ioutils.SanitizeFileName("A/B: Song?") // Returns "A_B_ Song_"
//
// # Diagnostic Dumps
//
// A Dumper writes each fetched record to <dir>/<alias>_<pointer>.json
// for operator inspection. Dumps are never read back by the pipeline.
//
//	d := ioutils.NewDumper("_debug_json")
//	d.DumpRecord("berea", "512", record)
package ioutils
