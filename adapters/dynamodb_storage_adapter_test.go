package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory table keyed by store_id.
type fakeDynamoDB struct {
	items map[string]map[string]dynamodbtypes.AttributeValue
	table string
	err   error
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: map[string]map[string]dynamodbtypes.AttributeValue{}}
}

func storeIDOf(key map[string]dynamodbtypes.AttributeValue) string {
	return key["store_id"].(*dynamodbtypes.AttributeValueMemberS).Value
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.table = aws.ToString(in.TableName)
	f.items[storeIDOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[storeIDOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, storeIDOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBStorageAdapter_SaveLoadClear(t *testing.T) {
	fake := newFakeDynamoDB()
	adapter := NewDynamoDBStorageAdapter(fake, "mobsquid_pending", "device-1")

	events := []Event{{ID: "1", Name: "open_app"}, {ID: "2", Name: "ping"}}
	if err := adapter.Save(events); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if fake.table != "mobsquid_pending" {
		t.Fatalf("expected table mobsquid_pending, got %q", fake.table)
	}

	loaded, err := adapter.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Name != "open_app" || loaded[1].Name != "ping" {
		t.Fatalf("unexpected events: %+v", loaded)
	}

	if err := adapter.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	loaded, err = adapter.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty store after clear, got %d", len(loaded))
	}
}

func TestDynamoDBStorageAdapter_StoresAreIsolated(t *testing.T) {
	fake := newFakeDynamoDB()
	a := NewDynamoDBStorageAdapter(fake, "t", "a")
	b := NewDynamoDBStorageAdapter(fake, "t", "b")

	if err := a.Save([]Event{{Name: "from-a"}}); err != nil {
		t.Fatal(err)
	}
	loaded, err := b.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("store b should not see store a events, got %+v", loaded)
	}
}

func TestDynamoDBStorageAdapter_Errors(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.err = errors.New("throttled")
	adapter := NewDynamoDBStorageAdapter(fake, "t", "a")

	if err := adapter.Save([]Event{{Name: "x"}}); err == nil {
		t.Error("expected save error")
	}
	if _, err := adapter.Load(); err == nil {
		t.Error("expected load error")
	}
	if err := adapter.Clear(); err == nil {
		t.Error("expected clear error")
	}
}
