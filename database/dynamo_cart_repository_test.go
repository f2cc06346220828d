package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in memory keyed by user_id.
type fakeDynamo struct {
	t     *testing.T
	items map[string]map[string]types.AttributeValue
	err   error
}

func userKey(t *testing.T, key map[string]types.AttributeValue) string {
	t.Helper()
	var k struct {
		UserID string `dynamodbav:"user_id"`
	}
	require.NoError(t, attributevalue.UnmarshalMap(key, &k))
	return k.UserID
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	assert.True(f.t, *in.ConsistentRead)
	return &dynamodb.GetItemOutput{Item: f.items[userKey(f.t, in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items[userKey(f.t, in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, userKey(f.t, in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func newDynamoRepo(t *testing.T, ttl time.Duration) (*DynamoCartRepository, *fakeDynamo) {
	store := &fakeDynamo{t: t, items: map[string]map[string]types.AttributeValue{}}
	return NewDynamoCartRepository(store, "carts", ttl), store
}

func TestDynamoCartRepository_SaveAndGet(t *testing.T) {
	repo, store := newDynamoRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, sampleCart("u1")))

	var doc cartDocument
	require.NoError(t, attributevalue.UnmarshalMap(store.items["u1"], &doc))
	assert.Equal(t, "100.5", doc.Items[0].MRP)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), doc.ExpiresAt, 5)

	got, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestDynamoCartRepository_MissingCart(t *testing.T) {
	repo, _ := newDynamoRepo(t, time.Hour)

	got, err := repo.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDynamoCartRepository_ExpiredRowIsIgnored(t *testing.T) {
	repo, store := newDynamoRepo(t, time.Hour)

	doc := toDocument(sampleCart("u1"))
	doc.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	item, err := attributevalue.MarshalMap(doc)
	require.NoError(t, err)
	store.items["u1"] = item

	got, err := repo.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDynamoCartRepository_NoTTLNeverExpires(t *testing.T) {
	repo, store := newDynamoRepo(t, 0)

	require.NoError(t, repo.SaveCart(context.Background(), sampleCart("u1")))
	_, hasExpiry := store.items["u1"]["expires_at"]
	assert.False(t, hasExpiry)

	got, err := repo.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDynamoCartRepository_Delete(t *testing.T) {
	repo, store := newDynamoRepo(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.SaveCart(ctx, sampleCart("u1")))

	require.NoError(t, repo.DeleteCart(ctx, "u1"))
	assert.Empty(t, store.items)
}

func TestDynamoCartRepository_ClientError(t *testing.T) {
	repo, store := newDynamoRepo(t, time.Hour)
	store.err = errors.New("throttled")

	_, err := repo.GetCart(context.Background(), "u1")
	assert.ErrorContains(t, err, "throttled")
	assert.Error(t, repo.SaveCart(context.Background(), sampleCart("u1")))
}
