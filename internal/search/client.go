package search

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://www.googleapis.com/customsearch/v1"
	userAgent = "spigell/intern-scout"
	// The Custom Search API never returns more than 10 items per request.
	pageSize = 10
)

type Client struct {
	apiKey     string
	engineID   string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiKey, engineID string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		APIURL:   apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		UserAgent: userAgent,
	}
}

// SetRequestsPerSecond paces page requests. Non-positive values disable pacing.
func (c *Client) SetRequestsPerSecond(rps float64) {
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}
