package cdm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	cdmhttp "github.com/jwhitmer/cdm-audio-downloader/internal/http"
	ioutils "github.com/jwhitmer/cdm-audio-downloader/internal/io"
	"github.com/jwhitmer/cdm-audio-downloader/internal/model"
)

// Logf receives diagnostic messages from the fetcher and resolver.
type Logf func(format string, args ...any)

// Fetcher retrieves full item records and compound child lists from a
// CONTENTdm installation. It performs one HTTP call per operation with
// no retry logic of its own.
type Fetcher struct {
	client *cdmhttp.Client
	base   string
	dumper *ioutils.Dumper
	warnf  Logf
}

// NewFetcher creates a Fetcher. dumper may be nil (or disabled) to
// skip raw-JSON dumps; warnf may be nil to silence warnings.
func NewFetcher(client *cdmhttp.Client, base string, dumper *ioutils.Dumper, warnf Logf) *Fetcher {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Fetcher{client: client, base: base, dumper: dumper, warnf: warnf}
}

// ItemPageURL returns the public page for an item, used as the tag
// source URL and as the Referer for compound-children requests.
func (f *Fetcher) ItemPageURL(id model.Identity) string {
	return fmt.Sprintf("%s/digital/collection/%s/id/%s", f.base, id.Alias, id.Pointer)
}

// FetchItem retrieves the full record for an identity via the
// singleitem endpoint. Transport failures are wrapped in a FetchError;
// the caller must skip the record, not the batch.
func (f *Fetcher) FetchItem(ctx context.Context, id model.Identity) (Record, error) {
	url := fmt.Sprintf("%s/digital/api/singleitem/collection/%s/id/%s", f.base, id.Alias, id.Pointer)

	var rec Record
	if err := f.client.GetJSON(ctx, url, &rec); err != nil {
		return nil, &FetchError{Identity: id, Err: err}
	}
	if f.dumper.Enabled() {
		f.dumper.DumpRecord(id.Alias, id.Pointer, rec)
	}
	return rec, nil
}

// compoundURLVariants returns the historically valid path shapes for
// the compound-object endpoint, in the order they should be tried.
// Which shape works depends on the installation's CONTENTdm version.
func (f *Fetcher) compoundURLVariants(id model.Identity) []string {
	return []string{
		fmt.Sprintf("%s/digital/api/compound/object/collection/%s/id/%s", f.base, id.Alias, id.Pointer),
		fmt.Sprintf("%s/digital/api/compound/object/collection/%s/%s", f.base, id.Alias, id.Pointer),
		fmt.Sprintf("%s/digital/api/compound/object/collection/%s/id/%s/", f.base, id.Alias, id.Pointer),
		fmt.Sprintf("%s/digital/api/compound/object/%s/id/%s", f.base, id.Alias, id.Pointer),
		fmt.Sprintf("%s/digital/api/compound/object/%s/%s", f.base, id.Alias, id.Pointer),
		fmt.Sprintf("%s/digital/api/compound/object/%s/id/%s/", f.base, id.Alias, id.Pointer),
	}
}

// FetchCompoundChildren retrieves the child list for a compound
// (album) object, trying each endpoint variant in order. A 404 moves
// silently to the next variant; any other non-success status, a
// non-JSON body, or a parse failure is logged as a warning and also
// moves on. Returns nil when no variant yields children: the record
// is simply not a compound object.
func (f *Fetcher) FetchCompoundChildren(ctx context.Context, id model.Identity) []Record {
	headers := map[string]string{"Referer": f.ItemPageURL(id)}

	for _, url := range f.compoundURLVariants(id) {
		resp, err := f.client.GetRaw(ctx, url, headers)
		if err != nil {
			f.warnf("compound GET failed %s: %v", url, err)
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			f.warnf("compound HTTP %d for %s", resp.StatusCode, url)
			continue
		}
		if !resp.IsJSON() {
			f.warnf("compound non-JSON at %s", url)
			continue
		}

		var data struct {
			Children []Record `json:"children"`
		}
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			f.warnf("compound JSON parse failed at %s: %v", url, err)
			continue
		}
		return data.Children
	}
	return nil
}
