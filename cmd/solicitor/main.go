package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/reviewloop/solicitor/internal/ads"
	"github.com/reviewloop/solicitor/internal/awsx"
	"github.com/reviewloop/solicitor/internal/config"
	"github.com/reviewloop/solicitor/internal/ledger"
	"github.com/reviewloop/solicitor/internal/lwa"
	"github.com/reviewloop/solicitor/internal/metrics"
	"github.com/reviewloop/solicitor/internal/pipeline"
	"github.com/reviewloop/solicitor/internal/product"
	"github.com/reviewloop/solicitor/internal/report"
	"github.com/reviewloop/solicitor/internal/spapi"
)

const metricNamespace = "ReviewSolicitor"

func main() {
	runLocal := os.Getenv("RUN_LOCAL") == "true"
	if runLocal {
		log.SetFormatter(&log.TextFormatter{})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}

	// run the scan once as a plain process for local development
	if runLocal {
		if err := run(context.Background(), cfg); err != nil {
			log.WithError(err).Fatal("run failed")
		}
		return
	}

	lambda.Start(func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg *config.Config) error {
	awsCfg, err := awsx.LoadAWSConfig(ctx, cfg.AssumeRoleARN)
	if err != nil {
		return err
	}
	clients := awsx.NewClients(awsCfg)
	httpClient := &http.Client{Timeout: 30 * time.Second}

	tokens := lwa.NewClient(httpClient, cfg.TokenURL, cfg.LWAClientID, cfg.LWAClientSecret, cfg.LWARefreshToken)
	sp := spapi.NewClient(spapi.ClientConfig{
		HTTPClient:      httpClient,
		Signer:          awsx.NewRequestSigner(awsCfg),
		Endpoint:        cfg.Endpoint,
		MarketplaceID:   cfg.MarketplaceID,
		UserAgent:       cfg.UserAgent,
		PageInterval:    cfg.PageInterval,
		SolicitInterval: cfg.SolicitInterval,
		DryRun:          cfg.DryRun,
	})
	store := ledger.NewStore(clients.DynamoDB, cfg.LedgerTable, cfg.SchemaVersion)

	p := pipeline.New(pipeline.Config{
		Tokens:           tokens,
		Fetcher:          sp,
		Ledger:           store,
		Dispatcher:       sp,
		MinOrderAgeDays:  cfg.MinOrderAgeDays,
		MaxEligibleDays:  cfg.MaxEligibleDays,
		SolicitationType: spapi.SolicitationTypeProductReview,
		DryRun:           cfg.DryRun,
	})

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"run_id":    res.RunID,
		"solicited": res.Solicited,
	}).Info("orders solicited")

	publisher := metrics.NewPublisher(clients.CloudWatch, metricNamespace)
	if err := publisher.PublishSolicitedCount(ctx, len(res.Solicited), res.DryRun); err != nil {
		log.WithError(err).Warn("metric publication failed")
	}

	if cfg.ReportFrom == "" || cfg.ReportTo == "" {
		return nil
	}

	var products report.ProductSource
	if cfg.RainforestAPIKey != "" {
		products = product.NewClient(httpClient, product.DefaultBaseURL, cfg.RainforestAPIKey)
	}
	var adInsights report.AdsSource
	if cfg.FacebookAccessToken != "" {
		adInsights = ads.NewClient(httpClient, ads.DefaultBaseURL, cfg.FacebookAccessToken)
	}

	gen := report.NewGenerator(tokens, sp, products, adInsights, cfg.ProductASIN, cfg.FacebookAdSetID)
	data, err := gen.Collect(ctx, len(res.Solicited), res.DryRun)
	if err != nil {
		log.WithError(err).Warn("report collection failed, skipping email")
		return nil
	}
	html, err := report.BuildHTML(data)
	if err != nil {
		log.WithError(err).Warn("report rendering failed, skipping email")
		return nil
	}
	mailer := report.NewMailer(clients.SES, cfg.ReportFrom, cfg.ReportTo)
	if err := mailer.Send(ctx, report.Subject(data), html); err != nil {
		log.WithError(err).Warn("report email failed")
	}
	return nil
}
