package cdm

import (
	"regexp"

	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// permalinkPattern matches item permalinks of the shape
// .../collection/<alias>/id/<numericId>, with or without a /digital
// prefix (installations differ).
var permalinkPattern = regexp.MustCompile(`/collection/([^/]+)/id/(\d+)`)

// permalinkFields are the record fields that may hold a permalink,
// scanned in order.
var permalinkFields = []string{"itemLink", "find", "link", "itemLinkUrl"}

// legacyPointerFields are the pre-API identifier fields, scanned in
// order.
var legacyPointerFields = []string{"id", "pointer", "dmrecord"}

// identityStrategy extracts an Identity from a record; a returned
// identity with an empty pointer means the strategy did not apply.
type identityStrategy func(rec Record, defaultAlias string) model.Identity

// identityStrategies is the ordered resolution table. The first
// strategy yielding a non-empty pointer wins.
var identityStrategies = []identityStrategy{
	identityFromModernFields,
	identityFromPermalink,
	identityFromItemID,
	identityFromLegacyFields,
}

// ResolveIdentity extracts the (collection alias, item pointer) pair
// from a record, trying each strategy in order. defaultAlias is used
// when the record names no collection of its own; for compound
// children, pass the parent's alias.
//
// Returns an IdentityError when no strategy finds a pointer. The
// caller must skip the record and continue the batch.
func ResolveIdentity(rec Record, defaultAlias string) (model.Identity, error) {
	for _, strategy := range identityStrategies {
		if id := strategy(rec, defaultAlias); id.Valid() {
			return id, nil
		}
	}
	return model.Identity{}, &IdentityError{
		Title: rec.Str("title"),
		Keys:  rec.Keys(),
	}
}

// identityFromModernFields reads the modern search-API fields
// directly. Both must be present: a record carrying a bare itemId
// falls through so a permalink field can recover its true alias.
func identityFromModernFields(rec Record, _ string) model.Identity {
	pointer := rec.Str("itemId")
	alias := rec.Str("collectionAlias")
	if pointer == "" || alias == "" {
		return model.Identity{}
	}
	return model.Identity{Alias: alias, Pointer: pointer}
}

// identityFromPermalink extracts both components from a
// permalink-shaped string field.
func identityFromPermalink(rec Record, _ string) model.Identity {
	for _, key := range permalinkFields {
		if m := permalinkPattern.FindStringSubmatch(rec.Str(key)); m != nil {
			return model.Identity{Alias: m[1], Pointer: m[2]}
		}
	}
	return model.Identity{}
}

// identityFromItemID pairs a bare itemId with the caller's default
// alias. It runs after permalink extraction, so it only applies when
// no field names the record's real collection; compound children
// resolved under their parent's alias land here.
func identityFromItemID(rec Record, defaultAlias string) model.Identity {
	pointer := rec.Str("itemId")
	if pointer == "" {
		return model.Identity{}
	}
	return model.Identity{Alias: defaultAlias, Pointer: pointer}
}

// identityFromLegacyFields pairs a legacy numeric identifier with the
// record's own alias, or defaultAlias when none is present.
func identityFromLegacyFields(rec Record, defaultAlias string) model.Identity {
	for _, key := range legacyPointerFields {
		if pointer := rec.Str(key); pointer != "" {
			alias := rec.Str("collectionAlias")
			if alias == "" {
				alias = defaultAlias
			}
			return model.Identity{Alias: alias, Pointer: pointer}
		}
	}
	return model.Identity{}
}
