// Package http provides an HTTP client configured for CONTENTdm API
// requests.
//
// The Client in this package handles:
//   - User-Agent and Accept headers for the CONTENTdm JSON API
//   - JSON document fetching into schema-variable records
//   - Raw responses (status + content type) for endpoint probing
//   - Streamed file downloads with progress tracking
//   - Absolutizing relative URIs, correcting installations that omit
//     the /digital path prefix
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	var record map[string]any
//	err := client.GetJSON(ctx, itemURL, &record)
//
//	err = client.DownloadFile(ctx, mediaURL, "/music/song.mp3", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
package http
