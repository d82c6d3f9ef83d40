// Package ledger is the durable record of prior solicitations, keyed by
// (order, solicitation type). It is the system's only defense against
// duplicate solicitations across runs, so the write path is a
// conditional put rather than read-then-write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"

	"github.com/reviewloop/solicitor/internal/awsx"
)

const schemaWaitTimeout = 2 * time.Minute

// StoreError wraps a DynamoDB failure with the operation and key it
// occurred on. The orchestrator treats it as fatal for that order only.
type StoreError struct {
	Op               string
	OrderID          string
	SolicitationType string
	Err              error
}

func (e *StoreError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ledger %s for order %s type %s: %v", e.Op, e.OrderID, e.SolicitationType, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store encapsulates ledger operations against DynamoDB.
type Store struct {
	client        awsx.DynamoDBAPI
	tableBase     string
	schemaVersion string
	nowFunc       func() time.Time
	log           *log.Entry
}

// NewStore returns a configured Store. The backing table name is
// tableBase suffixed with schemaVersion, so an incompatible version
// change starts a fresh ledger and orphans the old table.
func NewStore(client awsx.DynamoDBAPI, tableBase, schemaVersion string) *Store {
	return &Store{
		client:        client,
		tableBase:     tableBase,
		schemaVersion: schemaVersion,
		nowFunc:       time.Now,
		log:           log.WithField("component", "ledger"),
	}
}

// TableName is the version-suffixed table the store reads and writes.
func (s *Store) TableName() string {
	return s.tableBase + "_" + s.schemaVersion
}

// EnsureSchema provisions the table for the current schema version if it
// does not exist yet. Safe to call every run; concurrent creation by an
// overlapping run is tolerated.
func (s *Store) EnsureSchema(ctx context.Context) error {
	name := s.TableName()
	_, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: &name})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return &StoreError{Op: "describe table", Err: err}
	}

	s.log.WithField("table", name).Info("creating ledger table")
	_, err = s.client.CreateTable(ctx, &dyn.CreateTableInput{
		TableName: &name,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: awsString("order_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: awsString("solicitation_type"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: awsString("order_id"), KeyType: types.KeyTypeHash},
			{AttributeName: awsString("solicitation_type"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		// another run may have won the creation race
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return &StoreError{Op: "create table", Err: err}
		}
	}

	waiter := dyn.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dyn.DescribeTableInput{TableName: &name}, schemaWaitTimeout); err != nil {
		return &StoreError{Op: "await table", Err: err}
	}
	return nil
}

// Exists reports whether a record for (orderID, solicitationType) is
// already present. Absence is (false, nil), not an error.
func (s *Store) Exists(ctx context.Context, orderID, solicitationType string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: awsString(s.TableName()),
		Key:       recordKey(orderID, solicitationType),
	})
	if err != nil {
		return false, &StoreError{Op: "get", OrderID: orderID, SolicitationType: solicitationType, Err: err}
	}
	return len(out.Item) > 0, nil
}

// Claim writes the record for (orderID, solicitationType) only if none
// exists. It returns (false, nil) when the key is already present,
// meaning another run (or a prior one) owns this solicitation. This
// conditional write is the dedup gate: dispatch must only follow a
// successful claim.
func (s *Store) Claim(ctx context.Context, orderID, solicitationType string) (bool, error) {
	rec := Record{
		OrderID:          orderID,
		SolicitationType: solicitationType,
		MetadataVersion:  s.schemaVersion,
		DateCreatedUTC:   s.nowFunc().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, &StoreError{Op: "marshal record", OrderID: orderID, SolicitationType: solicitationType, Err: err}
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           awsString(s.TableName()),
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, &StoreError{Op: "put", OrderID: orderID, SolicitationType: solicitationType, Err: err}
	}
	return true, nil
}

// Release deletes a claim after a failed dispatch so the order stays
// retryable on the next run. Never called for successful solicitations.
func (s *Store) Release(ctx context.Context, orderID, solicitationType string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: awsString(s.TableName()),
		Key:       recordKey(orderID, solicitationType),
	})
	if err != nil {
		return &StoreError{Op: "delete", OrderID: orderID, SolicitationType: solicitationType, Err: err}
	}
	return nil
}

func recordKey(orderID, solicitationType string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id":          &types.AttributeValueMemberS{Value: orderID},
		"solicitation_type": &types.AttributeValueMemberS{Value: solicitationType},
	}
}

func awsString(s string) *string { return &s }
