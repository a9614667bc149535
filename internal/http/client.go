package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client wraps HTTP operations with CONTENTdm-specific configuration.
//
// All requests carry a fixed User-Agent and a JSON-preferring Accept
// header. Metadata requests share one timeout; media downloads get a
// longer one since audio files can be large.
type Client struct {
	metaClient     *http.Client
	downloadClient *http.Client
	userAgent      string
}

// NewClient creates a new HTTP client configured for CONTENTdm.
func NewClient() *Client {
	return &Client{
		metaClient:     &http.Client{Timeout: 30 * time.Second},
		downloadClient: &http.Client{Timeout: 120 * time.Second},
		userAgent:      "cdm-audio-dl/1.0 (+noncommercial)",
	}
}

// Response is a raw HTTP result used when probing endpoint variants:
// callers need the status code and content type to decide whether to
// try the next variant.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the response content type looks like JSON.
func (r *Response) IsJSON() bool {
	ct := strings.ToLower(r.ContentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "json")
}

func (c *Client) newRequest(ctx context.Context, url string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, */*;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// GetJSON performs a GET request and decodes the JSON response body
// into v. A non-200 status is an error.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := c.newRequest(ctx, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.metaClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// GetRaw performs a GET request and returns the raw response without
// treating any status code as an error. Extra headers (e.g. Referer)
// may be supplied.
func (c *Client) GetRaw(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := c.newRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.metaClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// ProgressWriter wraps a writer to track download progress.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (written, total).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// DownloadFile downloads a file to destPath, streaming directly to
// disk. onProgress may be nil.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	req, err := c.newRequest(ctx, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	return err
}

// DownloadBytes downloads a small file (e.g. thumbnail art) into memory.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.GetRaw(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Absolutize resolves a possibly-relative URI against the API base.
// CONTENTdm JSON often returns "/api/..." paths without the "/digital"
// prefix, so the prefix is added when missing.
func Absolutize(base, uri string) string {
	if uri == "" || strings.HasPrefix(uri, "http") {
		return uri
	}
	if !strings.HasPrefix(uri, "/digital") {
		return base + "/digital" + uri
	}
	return base + uri
}
