// Package cdm implements the CONTENTdm media resolution pipeline:
// searching a collection, resolving record identities across schema
// variants, fetching item metadata, resolving playable media, and
// synthesizing normalized tag sets.
//
// # Records
//
// CONTENTdm record schemas vary by installation and version, so records
// are handled as opaque key/value documents with helpers for the
// dynamic "fields" list some installations use:
//
//	var rec cdm.Record
//	_ = client.GetJSON(ctx, url, &rec)
//	artist := rec.Str("creator")
//
// # Identity Resolution
//
// Identities are extracted through an ordered strategy table; the first
// strategy producing a non-empty pointer wins:
//
//	id, err := cdm.ResolveIdentity(rec, "berea")
//
// # Media Resolution
//
// The Resolver walks one record through direct-URI, stream-URI, legacy
// file-list and compound-children stages, returning the first playable
// candidate together with the effective record, identity and title:
//
//	res, err := resolver.Resolve(ctx, id, searchTitle)
//	if err == nil {
//	    fmt.Println(res.Candidate.URL)
//	}
//
// Compound children are resolved one level deep only: a child is never
// itself checked for further children.
package cdm
