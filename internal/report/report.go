// Package report assembles and sends the daily status email: orders
// solicited, last-24h order lines, product rating snapshot, and ad
// spend. Every enrichment is best-effort; a missing product or ads
// lookup degrades to a placeholder instead of failing the report.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/reviewloop/solicitor/internal/ads"
	"github.com/reviewloop/solicitor/internal/product"
	"github.com/reviewloop/solicitor/internal/spapi"
)

// OrderFetcher matches the spapi client's listing method.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, window spapi.Window, token string) ([]spapi.Order, error)
}

// TokenProvider matches the lwa client.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// ProductSource matches the product client. May be nil.
type ProductSource interface {
	Fetch(ctx context.Context, asin, amazonDomain string) (*product.Product, error)
}

// AdsSource matches the ads client. May be nil.
type AdsSource interface {
	AdSetInsights(ctx context.Context, adSetID string) (*ads.Insights, error)
}

// Data is everything the report template renders.
type Data struct {
	GeneratedAt    time.Time
	SolicitedCount int
	DryRun         bool
	RecentOrders   []spapi.Order
	TotalUnits     int
	Product        *product.Product
	Ads            *ads.Insights
}

// Generator collects report data from its sources.
type Generator struct {
	tokens      TokenProvider
	fetcher     OrderFetcher
	products    ProductSource
	adInsights  AdsSource
	productASIN string
	adSetID     string
	nowFunc     func() time.Time
	log         *log.Entry
}

// NewGenerator returns a Generator. products and adInsights may be nil
// when the corresponding credentials are not configured.
func NewGenerator(tokens TokenProvider, fetcher OrderFetcher, products ProductSource, adInsights AdsSource, productASIN, adSetID string) *Generator {
	return &Generator{
		tokens:      tokens,
		fetcher:     fetcher,
		products:    products,
		adInsights:  adInsights,
		productASIN: productASIN,
		adSetID:     adSetID,
		nowFunc:     time.Now,
		log:         log.WithField("component", "report"),
	}
}

// Collect builds report Data: last-24h orders plus optional product and
// ads enrichment. Only the order fetch can fail the report.
func (g *Generator) Collect(ctx context.Context, solicitedCount int, dryRun bool) (*Data, error) {
	now := g.nowFunc().UTC()
	d := &Data{
		GeneratedAt:    now,
		SolicitedCount: solicitedCount,
		DryRun:         dryRun,
	}

	token, err := g.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("report token: %w", err)
	}
	orders, err := g.fetcher.FetchOrders(ctx, spapi.Window{CreatedAfter: now.Add(-24 * time.Hour)}, token)
	if err != nil {
		return nil, fmt.Errorf("report order fetch: %w", err)
	}
	d.RecentOrders = orders
	for _, o := range orders {
		d.TotalUnits += o.NumberOfItemsShipped + o.NumberOfItemsUnshipped
	}

	if g.products != nil && g.productASIN != "" {
		p, err := g.products.Fetch(ctx, g.productASIN, "amazon.com")
		if err != nil {
			g.log.WithError(err).Warn("product lookup failed, omitting from report")
		} else {
			d.Product = p
		}
	}

	if g.adInsights != nil && g.adSetID != "" {
		in, err := g.adInsights.AdSetInsights(ctx, g.adSetID)
		if err != nil {
			g.log.WithError(err).Warn("ad insights lookup failed, omitting from report")
		} else {
			d.Ads = in
		}
	}

	return d, nil
}

var bodyTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<body>
{{if .Product}}<h2><a href="{{.Product.Link}}">{{.Product.Title}}</a></h2>
<img src="{{.Product.ImageLink}}" style="width: 300px" />
{{end}}<h3>Reviews</h3>
<span style="font-size: 8pt">Reviews Solicited Today via API</span> {{.SolicitedCount}}{{if .DryRun}} (dry run){{end}}<br />
{{if .Product}}<i>The following are not deltas but absolute values</i><br />
<span style="font-size: 8pt">Overall Rating</span> {{.Product.Rating}}<br />
<span style="font-size: 8pt">Total Reviews</span> {{.Product.ReviewsTotal}}<br />
<span style="font-size: 8pt">Total Ratings</span> {{.Product.RatingsTotal}}<br />
{{end}}
<h3>Last 24h Orders ({{.TotalUnits}} Units)</h3>
{{range .RecentOrders}}{{.AmazonOrderID}} - {{.NumberOfItemsShipped}} Shipped / {{.NumberOfItemsUnshipped}} Unshipped - Purchase Date {{.PurchaseDate}}<br />
{{else}}<i>No recent orders</i>
{{end}}
<h3>Advertising (Trailing 3 Days)</h3>
{{if .Ads}}<span style="font-size: 8pt">Total Spend</span> ${{.Ads.Spend}}<br />
<span style="font-size: 8pt">Cost Per Click</span> ${{.Ads.CostPerClick}}<br />
<span style="font-size: 8pt">Cost Per Lead</span> ${{.Ads.CostPerLead}}<br />
{{else}}<i>No advertising data</i>
{{end}}</body>
</html>
`))

// BuildHTML renders the report body.
func BuildHTML(d *Data) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Subject returns the report subject line for d's generation time.
func Subject(d *Data) string {
	return fmt.Sprintf("FBA Product Status Update - %s", d.GeneratedAt.Format("2006-01-02T15:04:05"))
}
