package model

// Placeholder values used when the source record carries no usable
// text for a required tag.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UntitledName  = "Untitled"

	// GenericAlbum is the last-resort album name when neither an
	// override nor a record-level relation/holding-library value exists.
	GenericAlbum = "CONTENTdm Audio"
)

// TagSet is the normalized descriptive metadata for one resolved asset.
//
// All fields are independently optional in the source data, but Title,
// Artist and Album are always non-empty in a synthesized TagSet: the
// synthesizer defaults them to the caller-supplied fallback title and
// the Unknown placeholders respectively.
type TagSet struct {
	Title    string
	Artist   string
	Album    string
	Year     string
	Genre    string
	Composer string

	// Comment is the assembled free-text comment: description (if
	// present), a "Source: <url>" line, and a "Rights: <rights>" line
	// (if present), joined by newlines.
	Comment string

	// SourceURL is the public page the asset was resolved from.
	SourceURL string

	// SourceID is the CONTENTdm item pointer of the effective record.
	SourceID string

	// Identifier is the record's identifier field, when present. Used
	// only by the path planner's disambiguation ladder.
	Identifier string
}
