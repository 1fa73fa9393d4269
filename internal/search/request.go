package search

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/util"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	// Upper bound of the error body kept in UpstreamError.
	maxErrorBody = 512
)

// ItemResponse is the subset of the Custom Search response the fetcher reads.
type ItemResponse struct {
	Items []Item
}

type Item interface{}

// UpstreamError reports a non-success response from the search API.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
	Start      int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("search api returned %s at start=%d: %s", e.Status, e.Start, e.Body)
}

// getPage requests a single page of results starting at the 1-based offset start.
func (c *Client) getPage(ctx context.Context, q url.Values, start int) (*ItemResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.URL.RawQuery = addStart(q, start).Encode()

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		body = gzipReader
	}

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody*4))
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       util.TruncateForLog(util.SingleLine(string(data)), maxErrorBody),
			Start:      start,
		}
	}

	var response *ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if response == nil {
		response = &ItemResponse{}
	}

	return response, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", redact(req.URL)))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// addStart returns a copy of q with the start offset set.
func addStart(q url.Values, start int) url.Values {
	out := make(url.Values, len(q)+1)
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	out.Set("start", strconv.Itoa(start))

	return out
}

// redact hides the api key from logged URLs.
func redact(u *url.URL) string {
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
	}
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}
