package awsx

import (
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

// Clients bundles all AWS service clients for convenience.
type Clients struct {
	DynamoDB   DynamoDBAPI
	CloudWatch CloudWatchAPI
	SES        SESAPI
}

// NewClients returns concrete service clients that implement our
// narrow interfaces.
func NewClients(cfg sdkaws.Config) *Clients {
	return &Clients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
		SES:        sesv2.NewFromConfig(cfg),
	}
}
