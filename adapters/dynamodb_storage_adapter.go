package adapters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by DynamoDBStorageAdapter.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// pendingRecord is the single item holding a store's pending events.
type pendingRecord struct {
	StoreID   string `dynamodbav:"store_id"`
	Events    string `dynamodbav:"events"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}

// DynamoDBStorageAdapter keeps pending events in one DynamoDB item keyed
// by store ID, so several devices can share a table. The table must have
// a string partition key named "store_id".
type DynamoDBStorageAdapter struct {
	client    DynamoDBAPI
	tableName string
	storeID   string
	timeout   time.Duration
}

// Ensure DynamoDBStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*DynamoDBStorageAdapter)(nil)

// NewDynamoDBStorageAdapter creates a new DynamoDB-backed storage adapter.
func NewDynamoDBStorageAdapter(client DynamoDBAPI, tableName, storeID string) *DynamoDBStorageAdapter {
	return &DynamoDBStorageAdapter{
		client:    client,
		tableName: tableName,
		storeID:   storeID,
		timeout:   DefaultTransportTimeout,
	}
}

func (d *DynamoDBStorageAdapter) key() map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		"store_id": &dynamodbtypes.AttributeValueMemberS{Value: d.storeID},
	}
}

// Save overwrites the store's item with events.
func (d *DynamoDBStorageAdapter) Save(events []Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return errors.Wrap(err, "failed to marshal events")
	}

	item, err := attributevalue.MarshalMap(pendingRecord{
		StoreID:   d.storeID,
		Events:    string(data),
		UpdatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal pending record")
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	return errors.Wrap(err, "failed to save pending events to DynamoDB")
}

// Load reads the store's item. A missing item yields an empty slice.
func (d *DynamoDBStorageAdapter) Load() ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pending events from DynamoDB")
	}
	if result.Item == nil {
		return []Event{}, nil
	}

	var record pendingRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal pending record")
	}
	events := []Event{}
	if record.Events == "" {
		return events, nil
	}
	if err := json.Unmarshal([]byte(record.Events), &events); err != nil {
		return nil, errors.Wrap(err, "failed to decode pending events")
	}
	return events, nil
}

// Clear deletes the store's item.
func (d *DynamoDBStorageAdapter) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.key(),
	})
	return errors.Wrap(err, "failed to clear pending events in DynamoDB")
}
