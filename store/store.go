package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/shelf/internal/key"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
// *dynamodb.Client satisfies it.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store is the item repository over a DynamoDB items table.
type Store struct {
	client DynamoAPI
	config Config
}

// New creates a new Store instance.
func New(client DynamoAPI, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// itemKey builds the composite primary key for an item.
func itemKey(owner Owner, itemType, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ownerID": &types.AttributeValueMemberS{Value: owner.Key()},
		"id":      &types.AttributeValueMemberS{Value: key.Format(itemType, id)},
	}
}

// CreateItem allocates a fresh id for the type and writes a new record.
// contentJSON is required and must be well-formed; name defaults to
// "Untitled". Not idempotent: every call allocates a new id.
func (s *Store) CreateItem(ctx context.Context, owner Owner, itemType, name string, tags []string, contentJSON json.RawMessage) (CreatedItem, error) {
	if !ValidType(itemType) {
		return CreatedItem{}, ErrInvalidType
	}
	if !json.Valid(contentJSON) {
		return CreatedItem{}, ErrInvalidContent
	}
	if name == "" {
		name = "Untitled"
	}
	if tags == nil {
		tags = []string{}
	}

	n, err := s.NextID(ctx, itemType)
	if err != nil {
		return CreatedItem{}, fmt.Errorf("allocate id: %w", err)
	}

	rec := record{
		OwnerID:     owner.Key(),
		ID:          key.FormatID(itemType, n),
		Type:        itemType,
		Name:        name,
		Tags:        tags,
		ContentJSON: string(contentJSON),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return CreatedItem{}, fmt.Errorf("marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.ItemsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return CreatedItem{}, ErrAlreadyExists
		}
		return CreatedItem{}, err
	}

	return CreatedItem{Type: itemType, ID: strconv.FormatInt(n, 10)}, nil
}

// ReadItem fetches one item by composite key. A missing item returns
// (nil, nil), not an error.
func (s *Store) ReadItem(ctx context.Context, owner Owner, itemType, id string) (*Item, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.ItemsTable),
		Key:       itemKey(owner, itemType, id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}
	return unmarshalItem(result.Item)
}

// ReadAllItemsForOwner returns every item under the owner's partition key.
// Ordering follows the sort key within a page; it is not guaranteed stable
// across pages.
func (s *Store) ReadAllItemsForOwner(ctx context.Context, owner Owner) ([]Item, error) {
	return s.queryItems(ctx, s.ownerQuery(owner))
}

// ReadAllItemsForType returns the owner's items of one type, via the
// type index.
func (s *Store) ReadAllItemsForType(ctx context.Context, owner Owner, itemType string) ([]Item, error) {
	if !ValidType(itemType) {
		return nil, ErrInvalidType
	}
	return s.queryItems(ctx, s.typeQuery(owner, itemType))
}

// CountItemsForOwner counts the owner's items without materializing them.
func (s *Store) CountItemsForOwner(ctx context.Context, owner Owner) (int64, error) {
	return s.queryCount(ctx, s.ownerQuery(owner))
}

// CountItemsForType counts the owner's items of one type.
func (s *Store) CountItemsForType(ctx context.Context, owner Owner, itemType string) (int64, error) {
	if !ValidType(itemType) {
		return 0, ErrInvalidType
	}
	return s.queryCount(ctx, s.typeQuery(owner, itemType))
}

func (s *Store) ownerQuery(owner Owner) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.config.ItemsTable),
		KeyConditionExpression: aws.String("ownerID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner.Key()},
		},
	}
}

func (s *Store) typeQuery(owner Owner, itemType string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.config.ItemsTable),
		IndexName:              aws.String(s.config.TypeIndex),
		KeyConditionExpression: aws.String("#type = :type AND ownerID = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#type": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type":  &types.AttributeValueMemberS{Value: itemType},
			":owner": &types.AttributeValueMemberS{Value: owner.Key()},
		},
	}
}

// queryItems paginates through all results of a query.
func (s *Store) queryItems(ctx context.Context, input *dynamodb.QueryInput) ([]Item, error) {
	items := []Item{}
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			item, err := unmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, *item)
		}
	}
	return items, nil
}

// queryCount runs a query in COUNT mode, summing across pages.
func (s *Store) queryCount(ctx context.Context, input *dynamodb.QueryInput) (int64, error) {
	input.Select = types.SelectCount

	var total int64
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int64(page.Count)
	}
	return total, nil
}

// UpdateItemWithChanges applies a partial changeset to an existing item and
// returns the full updated record. Fields absent from the changeset are
// untouched. Updating a missing item returns ErrNotFound.
func (s *Store) UpdateItemWithChanges(ctx context.Context, owner Owner, itemType, id string, changes Changes) (*Item, error) {
	updateExpr, exprNames, exprValues, err := changes.build()
	if err != nil {
		return nil, err
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.ItemsTable),
		Key:                       itemKey(owner, itemType, id),
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return unmarshalItem(out.Attributes)
}

// UpdateNameForItem updates just the item's name, returning the full
// updated record.
func (s *Store) UpdateNameForItem(ctx context.Context, owner Owner, itemType, id, name string) (*Item, error) {
	return s.UpdateItemWithChanges(ctx, owner, itemType, id, Changes{Name: &name})
}

// UpdateTagsForItem replaces the item's tags, returning the full updated
// record.
func (s *Store) UpdateTagsForItem(ctx context.Context, owner Owner, itemType, id string, tags []string) (*Item, error) {
	if tags == nil {
		tags = []string{}
	}
	return s.UpdateItemWithChanges(ctx, owner, itemType, id, Changes{Tags: tags})
}

// DeleteItem removes an item. Deleting a missing item is not an error.
func (s *Store) DeleteItem(ctx context.Context, owner Owner, itemType, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.ItemsTable),
		Key:       itemKey(owner, itemType, id),
	})
	return err
}
