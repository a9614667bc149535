package cdm

import (
	"context"
	"fmt"
	"net/url"
	"time"

	cdmhttp "github.com/jwhitmer/cdm-audio-downloader/internal/http"
)

// Searcher issues paged search queries against the CONTENTdm search
// API and accumulates raw records up to a cap.
type Searcher struct {
	client     *cdmhttp.Client
	base       string
	pageSize   int
	maxRecords int
	delay      time.Duration
}

// NewSearcher creates a Searcher. pageSize is items per page (the API
// usually caps this at 100), maxRecords bounds the total accumulated,
// and delay is slept between page requests.
func NewSearcher(client *cdmhttp.Client, base string, pageSize, maxRecords int, delay time.Duration) *Searcher {
	return &Searcher{
		client:     client,
		base:       base,
		pageSize:   pageSize,
		maxRecords: maxRecords,
		delay:      delay,
	}
}

// searchURL builds the paged search endpoint URL.
func (s *Searcher) searchURL(collection, query string, page int) string {
	return fmt.Sprintf("%s/digital/api/search/collection/%s/searchterm/%s/field/all/mode/all/conn/and/page/%d/size/%d",
		s.base, collection, url.PathEscape(query), page, s.pageSize)
}

// Search runs the paged query and returns the accumulated records.
// Pagination terminates on an empty page or the max-record cap. A
// transport failure on the first page is returned as an error; a
// failure on a later page terminates pagination with the records
// accumulated so far.
func (s *Searcher) Search(ctx context.Context, collection, query string) ([]Record, error) {
	var items []Record
	for page := 1; ; page++ {
		var result struct {
			Items []Record `json:"items"`
		}
		if err := s.client.GetJSON(ctx, s.searchURL(collection, query, page), &result); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("search %q in %s: %w", query, collection, err)
			}
			break
		}

		items = append(items, result.Items...)
		if len(result.Items) == 0 || len(items) >= s.maxRecords {
			break
		}

		select {
		case <-ctx.Done():
			return items, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	if len(items) > s.maxRecords {
		items = items[:s.maxRecords]
	}
	return items, nil
}
