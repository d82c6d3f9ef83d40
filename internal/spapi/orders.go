package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Order is one marketplace order as returned by the listing endpoint.
// Immutable once fetched.
type Order struct {
	AmazonOrderID          string    `json:"AmazonOrderId"`
	PurchaseDate           time.Time `json:"PurchaseDate"`
	NumberOfItemsShipped   int       `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped int       `json:"NumberOfItemsUnshipped"`
}

// Window bounds order-creation timestamps for a fetch. A zero
// CreatedBefore means no upper bound.
type Window struct {
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// FetchError reports a non-2xx listing response. The fetch that produced
// it is discarded whole; partial pages are never returned.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("order listing failed: status=%d body=%s", e.StatusCode, e.Body)
}

type ordersPayload struct {
	Orders    []Order `json:"Orders"`
	NextToken string  `json:"NextToken"`
}

type ordersResponse struct {
	Payload ordersPayload `json:"payload"`
}

// FetchOrders retrieves every order in the window, following NextToken
// continuation cursors until exhausted. The full set is materialized
// before returning; any page failure aborts the whole fetch.
func (c *Client) FetchOrders(ctx context.Context, window Window, token string) ([]Order, error) {
	var orders []Order
	next := ""

	for page := 1; ; page++ {
		if err := c.pageLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("page limiter: %w", err)
		}

		req, err := c.newRequest(ctx, http.MethodGet, c.ordersURL(window, next), token)
		if err != nil {
			return nil, fmt.Errorf("build orders request: %w", err)
		}
		if err := c.signer.Sign(ctx, req, nil); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("orders request (page %d): %w", page, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read orders response (page %d): %w", page, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		var parsed ordersResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode orders response (page %d): %w", page, err)
		}
		orders = append(orders, parsed.Payload.Orders...)

		if parsed.Payload.NextToken == "" {
			break
		}
		next = parsed.Payload.NextToken
	}

	c.log.WithField("orders", len(orders)).Debug("order fetch complete")
	return orders, nil
}

func (c *Client) ordersURL(window Window, nextToken string) string {
	q := url.Values{}
	q.Set("MarketplaceIds", c.marketplaceID)
	q.Set("CreatedAfter", window.CreatedAfter.UTC().Format(time.RFC3339))
	if !window.CreatedBefore.IsZero() {
		q.Set("CreatedBefore", window.CreatedBefore.UTC().Format(time.RFC3339))
	}
	if nextToken != "" {
		q.Set("NextToken", nextToken)
	}
	return c.endpoint + "/orders/v0/orders?" + q.Encode()
}
