// Package spapi talks to the Selling Partner API: listing orders within
// an eligibility window and dispatching review solicitations.
package spapi

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SolicitationTypeProductReview is the only solicitation type the API
// currently offers.
const SolicitationTypeProductReview = "productReviewAndSellerFeedback"

const accessTokenHeader = "x-amz-access-token"

// Signer adds SigV4 authorization headers to an outbound request.
type Signer interface {
	Sign(ctx context.Context, req *http.Request, body []byte) error
}

// ClientConfig groups the dependencies and tunables for a Client.
type ClientConfig struct {
	HTTPClient    *http.Client
	Signer        Signer
	Endpoint      string // e.g. https://sellingpartnerapi-na.amazon.com
	MarketplaceID string
	UserAgent     string

	// PageInterval spaces order-listing page requests (the endpoint has
	// a per-second request ceiling). SolicitInterval spaces solicitation
	// dispatches (one call per second).
	PageInterval    time.Duration
	SolicitInterval time.Duration

	// DryRun suppresses the outbound solicitation call.
	DryRun bool
}

// Client is a Selling Partner API client for a single marketplace.
type Client struct {
	httpClient     *http.Client
	signer         Signer
	endpoint       string
	marketplaceID  string
	userAgent      string
	pageLimiter    *rate.Limiter
	solicitLimiter *rate.Limiter
	dryRun         bool
	log            *log.Entry
}

// NewClient returns a configured Client. Both limiters use burst 1, so
// the first call in a run is never artificially delayed while every
// consecutive pair is spaced by at least the configured interval.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		httpClient:     cfg.HTTPClient,
		signer:         cfg.Signer,
		endpoint:       cfg.Endpoint,
		marketplaceID:  cfg.MarketplaceID,
		userAgent:      cfg.UserAgent,
		pageLimiter:    rate.NewLimiter(rate.Every(cfg.PageInterval), 1),
		solicitLimiter: rate.NewLimiter(rate.Every(cfg.SolicitInterval), 1),
		dryRun:         cfg.DryRun,
		log:            log.WithField("component", "spapi"),
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(accessTokenHeader, token)
	req.Header.Set("user-agent", c.userAgent)
	return req, nil
}
