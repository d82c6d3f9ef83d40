package metrics

import (
	"context"
	"fmt"
	"strconv"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/reviewloop/solicitor/internal/awsx"
)

// MetricOrdersSolicited counts orders a ledger record was newly written for.
const MetricOrdersSolicited = "OrdersSolicited"

// Publisher wraps a CloudWatch client and a metric namespace.
type Publisher struct {
	client    awsx.CloudWatchAPI
	namespace string
}

// NewPublisher returns a Publisher bound to a namespace.
func NewPublisher(client awsx.CloudWatchAPI, namespace string) *Publisher {
	return &Publisher{client: client, namespace: namespace}
}

// PublishSolicitedCount records how many orders were solicited in one
// run. Dry-run data points are dimensioned separately so they never mix
// with live counts.
func (p *Publisher) PublishSolicitedCount(ctx context.Context, count int, dryRun bool) error {
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &p.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(MetricOrdersSolicited),
				Value:      sdkaws.Float64(float64(count)),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: sdkaws.String("DryRun"), Value: sdkaws.String(strconv.FormatBool(dryRun))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
