package database

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// DynamoItemAPI is the part of the DynamoDB client the cart store uses.
type DynamoItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoCartRepository stores carts in a table keyed by `user_id`. The
// `expires_at` attribute is meant to be the table's TTL attribute.
type DynamoCartRepository struct {
	client DynamoItemAPI
	table  string
	ttl    time.Duration
}

func NewDynamoCartRepository(client DynamoItemAPI, table string, ttl time.Duration) *DynamoCartRepository {
	return &DynamoCartRepository{client: client, table: table, ttl: ttl}
}

func (d *DynamoCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key, ConsistentRead: sdkaws.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var doc cartDocument
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	// DynamoDB TTL deletion is lazy, so expired rows can still be read.
	if doc.ExpiresAt > 0 && time.Now().Unix() > doc.ExpiresAt {
		return nil, nil
	}
	return fromDocument(doc)
}

func (d *DynamoCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	doc := toDocument(cart)
	if d.ttl > 0 {
		doc.ExpiresAt = cart.UpdatedAt.Add(d.ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoCartRepository) DeleteCart(ctx context.Context, userID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	if _, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &d.table, Key: key}); err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	return nil
}
