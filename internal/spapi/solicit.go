package spapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DispatchError reports a rejected solicitation. A non-2xx here usually
// means the order is ineligible or was already solicited out-of-band;
// the caller skips the order and moves on.
type DispatchError struct {
	OrderID    string
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("solicitation for order %s failed: status=%d body=%s", e.OrderID, e.StatusCode, e.Body)
}

// Solicit asks the marketplace to prompt the buyer of orderID for a
// review. Consecutive calls are spaced by the configured interval. In
// dry-run mode no network call is made and success is reported
// immediately.
func (c *Client) Solicit(ctx context.Context, token, orderID, solicitationType string) error {
	if c.dryRun {
		c.log.WithField("order_id", orderID).Info("dry run, skipping solicitation call")
		return nil
	}

	if err := c.solicitLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("solicit limiter: %w", err)
	}

	u := fmt.Sprintf("%s/solicitations/v1/orders/%s/solicitations/%s?marketplaceIds=%s",
		c.endpoint, url.PathEscape(orderID), url.PathEscape(solicitationType), url.QueryEscape(c.marketplaceID))

	req, err := c.newRequest(ctx, http.MethodPost, u, token)
	if err != nil {
		return fmt.Errorf("build solicitation request: %w", err)
	}
	if err := c.signer.Sign(ctx, req, nil); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solicitation request for order %s: %w", orderID, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read solicitation response for order %s: %w", orderID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DispatchError{OrderID: orderID, StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.log.WithField("order_id", orderID).Info("solicitation accepted")
	return nil
}
