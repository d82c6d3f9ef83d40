// Package pipeline composes token acquisition, order fetching, the
// ledger, and the dispatcher into the scan -> claim -> dispatch loop.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/reviewloop/solicitor/internal/spapi"
)

// TokenProvider yields a bearer token for one run.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// OrderFetcher materializes every order in the window before returning.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, window spapi.Window, token string) ([]spapi.Order, error)
}

// Dispatcher issues one solicitation call per order.
type Dispatcher interface {
	Solicit(ctx context.Context, token, orderID, solicitationType string) error
}

// Ledger is the durable dedup store.
type Ledger interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, orderID, solicitationType string) (bool, error)
	Claim(ctx context.Context, orderID, solicitationType string) (bool, error)
	Release(ctx context.Context, orderID, solicitationType string) error
}

// Config groups the pipeline's collaborators and tunables.
type Config struct {
	Tokens           TokenProvider
	Fetcher          OrderFetcher
	Ledger           Ledger
	Dispatcher       Dispatcher
	MinOrderAgeDays  int
	MaxEligibleDays  int
	SolicitationType string
	DryRun           bool
}

// Result summarizes one run. Solicited preserves dispatch order.
type Result struct {
	RunID            string
	Window           spapi.Window
	OrdersSeen       int
	Solicited        []string
	AlreadySolicited int
	Failed           int
	DryRun           bool
}

// Pipeline runs the solicitation scan. Orders are processed strictly
// sequentially; the dispatcher's rate limit only holds with a single
// in-flight request per run.
type Pipeline struct {
	cfg     Config
	nowFunc func() time.Time
	log     *log.Entry
}

// New returns a Pipeline for the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		nowFunc: time.Now,
		log:     log.WithField("component", "pipeline"),
	}
}

// Run executes one full scan. Token and fetch failures abort the run
// before anything is dispatched; per-order failures are logged and the
// loop continues. The returned Result lists every order a ledger record
// was newly written for.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := p.log.WithField("run_id", runID)

	token, err := p.cfg.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire access token: %w", err)
	}

	window, err := ComputeWindow(p.nowFunc().UTC(), p.cfg.MinOrderAgeDays, p.cfg.MaxEligibleDays)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{
		"created_after":  window.CreatedAfter,
		"created_before": window.CreatedBefore,
		"dry_run":        p.cfg.DryRun,
	}).Info("starting solicitation scan")

	orders, err := p.cfg.Fetcher.FetchOrders(ctx, window, token)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	if err := p.cfg.Ledger.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}

	res := &Result{
		RunID:      runID,
		Window:     window,
		OrdersSeen: len(orders),
		DryRun:     p.cfg.DryRun,
	}

	for _, order := range orders {
		olog := logger.WithField("order_id", order.AmazonOrderID)

		seen, err := p.cfg.Ledger.Exists(ctx, order.AmazonOrderID, p.cfg.SolicitationType)
		if err != nil {
			olog.WithError(err).Error("ledger lookup failed, skipping order")
			res.Failed++
			continue
		}
		if seen {
			res.AlreadySolicited++
			continue
		}

		claimed, err := p.cfg.Ledger.Claim(ctx, order.AmazonOrderID, p.cfg.SolicitationType)
		if err != nil {
			olog.WithError(err).Error("ledger claim failed, skipping order")
			res.Failed++
			continue
		}
		if !claimed {
			// a concurrent run got here first
			olog.Debug("claim lost, order already solicited")
			res.AlreadySolicited++
			continue
		}

		if err := p.cfg.Dispatcher.Solicit(ctx, token, order.AmazonOrderID, p.cfg.SolicitationType); err != nil {
			olog.WithError(err).Warn("dispatch failed, releasing claim for retry next run")
			if rerr := p.cfg.Ledger.Release(ctx, order.AmazonOrderID, p.cfg.SolicitationType); rerr != nil {
				olog.WithError(rerr).Error("claim release failed, order will not be retried")
			}
			res.Failed++
			continue
		}

		res.Solicited = append(res.Solicited, order.AmazonOrderID)
	}

	logger.WithFields(log.Fields{
		"orders_seen":       res.OrdersSeen,
		"solicited":         len(res.Solicited),
		"already_solicited": res.AlreadySolicited,
		"failed":            res.Failed,
	}).Info("solicitation scan complete")
	return res, nil
}
