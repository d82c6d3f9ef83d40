// Package ads pulls trailing ad-set spend metrics from the Facebook
// Graph API for the status report.
package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the Graph API root used in production.
const DefaultBaseURL = "https://graph.facebook.com/v17.0"

// Insights holds trailing-3-day ad-set metrics. Values are decimal
// strings as the Graph API returns them.
type Insights struct {
	Spend        string
	CostPerClick string
	CostPerLead  string
}

// Client is a thin Graph API insights wrapper.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient returns a Client against baseURL (DefaultBaseURL in production).
func NewClient(httpClient *http.Client, baseURL, accessToken string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL, accessToken: accessToken}
}

type costPerAction struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

type insightsResponse struct {
	Data []struct {
		Spend             string          `json:"spend"`
		CostPerActionType []costPerAction `json:"cost_per_action_type"`
	} `json:"data"`
}

// AdSetInsights fetches spend and per-action costs for one ad set over
// the trailing three days.
func (c *Client) AdSetInsights(ctx context.Context, adSetID string) (*Insights, error) {
	q := url.Values{}
	q.Set("fields", "spend,cost_per_action_type")
	q.Set("date_preset", "last_3d")
	q.Set("access_token", c.accessToken)

	u := fmt.Sprintf("%s/%s/insights?%s", c.baseURL, url.PathEscape(adSetID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build insights request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insights request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read insights response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("insights lookup for ad set %s failed: status=%d body=%s", adSetID, resp.StatusCode, body)
	}

	var parsed insightsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode insights response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no insights data for ad set %s", adSetID)
	}

	out := &Insights{Spend: parsed.Data[0].Spend}
	for _, cpa := range parsed.Data[0].CostPerActionType {
		switch cpa.ActionType {
		case "link_click":
			out.CostPerClick = cpa.Value
		case "lead":
			out.CostPerLead = cpa.Value
		}
	}
	return out, nil
}
