package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// BuildQuery renders the q parameter as "<query> in <location>", verbatim.
func BuildQuery(query, location string) string {
	return fmt.Sprintf("%s in %s", query, location)
}

// Fetch collects up to desired postings for query in location, one page of 10 at a time.
// It stops early on an empty page. A non-success response stops the scan as well and is
// returned as *UpstreamError together with the postings collected before it.
func (c *Client) Fetch(ctx context.Context, query, location string, desired int) ([]*Posting, error) {
	var postings []*Posting

	q := url.Values{}
	q.Set("q", BuildQuery(query, location))
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)

	start := 1
	for len(postings) < desired {
		response, err := c.getPage(ctx, q, start)
		if err != nil {
			var upstream *UpstreamError
			if errors.As(err, &upstream) {
				c.logger.Error("search api request failed",
					zap.Int("status", upstream.StatusCode),
					zap.Int("start", upstream.Start),
					zap.String("body", upstream.Body),
				)
			}
			return truncate(postings, desired), err
		}

		if len(response.Items) == 0 {
			c.logger.Info("no more job descriptions found", zap.Int("start", start))
			break
		}

		page, err := decodePostings(response.Items)
		if err != nil {
			return truncate(postings, desired), err
		}

		c.logger.Debug("got search page",
			zap.Int("start", start),
			zap.Int("items", len(page)),
		)

		postings = append(postings, page...)
		start += pageSize
	}

	return truncate(postings, desired), nil
}

func decodePostings(items []Item) ([]*Posting, error) {
	var postings []*Posting

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &postings,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode search items: %w", err)
	}

	for _, posting := range postings {
		posting.Description = plainText(posting.Description)
	}

	return postings, nil
}

func truncate(postings []*Posting, desired int) []*Posting {
	if desired < 0 {
		desired = 0
	}
	if len(postings) > desired {
		return postings[:desired]
	}
	return postings
}
