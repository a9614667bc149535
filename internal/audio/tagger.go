package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// Policy defines how existing ID3 frames are treated when tagging.
type Policy int

const (
	// PolicySkip leaves files untouched.
	PolicySkip Policy = iota

	// PolicyUpdate fills frames but never clobbers a frame that
	// already holds non-empty text.
	PolicyUpdate

	// PolicyOverwrite replaces frames unconditionally.
	PolicyOverwrite
)

// ParsePolicy converts a config string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "skip":
		return PolicySkip, nil
	case "update":
		return PolicyUpdate, nil
	case "overwrite":
		return PolicyOverwrite, nil
	default:
		return PolicySkip, fmt.Errorf("unknown tag policy %q (want skip, update or overwrite)", s)
	}
}

// Result reports what the tagger did to a file.
type Result string

const (
	ResultSkipped     Result = "skipped"
	ResultUpdated     Result = "updated"
	ResultOverwritten Result = "overwritten"
)

// Descriptions of the custom TXXX frames carrying provenance.
const (
	frameSourceURL = "SOURCE_URL"
	frameSourceID  = "CONTENTDM_ID"
)

// Tagger writes normalized tag sets into MP3 ID3 frames.
type Tagger struct {
	policy Policy
}

// NewTagger creates a Tagger with the given policy.
func NewTagger(policy Policy) *Tagger {
	return &Tagger{policy: policy}
}

// Apply writes tags (and optional cover art) into the file at path.
//
// The same TagSet that planned the file's path must be passed here so
// the on-disk location and the embedded metadata agree. Returns the
// action taken; a returned error counts as a tagging failure and must
// not roll back the download.
func (t *Tagger) Apply(path string, tags model.TagSet, artwork []byte) (Result, error) {
	if t.policy == PolicySkip {
		return ResultSkipped, nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", err
	}
	defer tag.Close()

	overwrite := t.policy == PolicyOverwrite

	t.setText(tag, "TIT2", tags.Title, overwrite)
	t.setText(tag, "TPE1", tags.Artist, overwrite)
	t.setText(tag, "TALB", tags.Album, overwrite)
	t.setText(tag, "TCON", tags.Genre, overwrite)
	t.setText(tag, "TCOM", tags.Composer, overwrite)
	t.setText(tag, "TDRC", tags.Year, overwrite)

	t.setComment(tag, tags.Comment, overwrite)
	t.setIdentifierFrames(tag, tags, overwrite)

	if artwork != nil {
		setArtwork(tag, artwork)
	}

	if err := tag.Save(); err != nil {
		return "", err
	}

	if overwrite {
		return ResultOverwritten, nil
	}
	return ResultUpdated, nil
}

// setText writes one text frame. Under update policy the frame is
// left alone when it already holds non-empty text.
func (t *Tagger) setText(tag *id3v2.Tag, id, value string, overwrite bool) {
	if value == "" {
		return
	}
	if !overwrite && strings.TrimSpace(tag.GetTextFrame(id).Text) != "" {
		return
	}
	tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
}

// setComment writes the COMM frame under the same clobber rules as
// text frames.
func (t *Tagger) setComment(tag *id3v2.Tag, comment string, overwrite bool) {
	if comment == "" {
		return
	}

	commID := tag.CommonID("Comments")
	if !overwrite {
		for _, f := range tag.GetFrames(commID) {
			if cf, ok := f.(id3v2.CommentFrame); ok && strings.TrimSpace(cf.Text) != "" {
				return
			}
		}
	}

	tag.DeleteFrames(commID)
	tag.AddCommentFrame(id3v2.CommentFrame{
		Encoding:    id3v2.EncodingUTF8,
		Language:    "eng",
		Description: "",
		Text:        comment,
	})
}

// setIdentifierFrames maintains the SOURCE_URL / CONTENTDM_ID TXXX
// frames. Overwrite de-duplicates ours before re-adding (preserving
// unrelated TXXX frames); update adds each frame only when no frame
// with the same description exists yet.
func (t *Tagger) setIdentifierFrames(tag *id3v2.Tag, tags model.TagSet, overwrite bool) {
	txxxID := tag.CommonID("User defined text information frame")
	existing := tag.GetFrames(txxxID)

	ours := map[string]bool{frameSourceURL: true, frameSourceID: true}
	present := map[string]bool{}
	for _, f := range existing {
		if udf, ok := f.(id3v2.UserDefinedTextFrame); ok {
			present[strings.ToUpper(udf.Description)] = true
		}
	}

	if overwrite {
		tag.DeleteFrames(txxxID)
		for _, f := range existing {
			if udf, ok := f.(id3v2.UserDefinedTextFrame); ok && !ours[strings.ToUpper(udf.Description)] {
				tag.AddUserDefinedTextFrame(udf)
			}
		}
		present = map[string]bool{}
	}

	if tags.SourceURL != "" && !present[frameSourceURL] {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: frameSourceURL,
			Value:       tags.SourceURL,
		})
	}
	if tags.SourceID != "" && !present[frameSourceID] {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: frameSourceID,
			Value:       tags.SourceID,
		})
	}
}

// setArtwork embeds cover art as the attached picture frame, replacing
// any existing pictures.
func setArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
