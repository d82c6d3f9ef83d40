// Package product looks up listing metadata (title, rating, review
// counts) through the Rainforest API for the status report.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the Rainforest request endpoint.
const DefaultBaseURL = "https://api.rainforestapi.com/request"

// Product is the subset of listing metadata the report renders.
type Product struct {
	Title        string
	Link         string
	ImageLink    string
	Rating       float64
	ReviewsTotal int
	RatingsTotal int
}

// Client is a thin Rainforest API wrapper.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient returns a Client against baseURL (DefaultBaseURL in production).
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

type productResponse struct {
	Product struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		MainImage struct {
			Link string `json:"link"`
		} `json:"main_image"`
		Rating       float64 `json:"rating"`
		ReviewsTotal int     `json:"reviews_total"`
		RatingsTotal int     `json:"ratings_total"`
	} `json:"product"`
}

// Fetch retrieves metadata for one ASIN on the given Amazon domain.
func (c *Client) Fetch(ctx context.Context, asin, amazonDomain string) (*Product, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("type", "product")
	q.Set("asin", asin)
	q.Set("amazon_domain", amazonDomain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read product response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("product lookup for %s failed: status=%d body=%s", asin, resp.StatusCode, body)
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	return &Product{
		Title:        parsed.Product.Title,
		Link:         parsed.Product.Link,
		ImageLink:    parsed.Product.MainImage.Link,
		Rating:       parsed.Product.Rating,
		ReviewsTotal: parsed.Product.ReviewsTotal,
		RatingsTotal: parsed.Product.RatingsTotal,
	}, nil
}
