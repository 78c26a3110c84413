package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NextID atomically increments and returns the id counter for an item type.
// The counter record is created on first use. Concurrent callers for the
// same type are serialized by DynamoDB's atomic ADD; no two observe the
// same value. Store errors propagate verbatim, there is no retry.
func (s *Store) NextID(ctx context.Context, itemType string) (int64, error) {
	if !ValidType(itemType) {
		return 0, ErrInvalidType
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.CountersTable),
		Key: map[string]types.AttributeValue{
			"type": &types.AttributeValueMemberS{Value: itemType},
		},
		UpdateExpression: aws.String("ADD #count :one"),
		ExpressionAttributeNames: map[string]string{
			"#count": "count",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}

	counter, ok := out.Attributes["count"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter for %q: missing count attribute", itemType)
	}
	n, err := strconv.ParseInt(counter.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter for %q: %w", itemType, err)
	}
	return n, nil
}
