package store

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/shelf/internal/key"
)

// Owner identifies the tenant/namespace an item belongs to.
type Owner struct {
	Type string
	ID   string
}

// Key returns the owner's partition key, e.g. "organization-1".
func (o Owner) Key() string {
	return key.OwnerKey(o.Type, o.ID)
}

// Item is a content record as returned to callers: the sort key's type
// prefix is stripped from ID and contentJSON comes back parsed.
type Item struct {
	Type        string          `json:"type"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tags        []string        `json:"tags"`
	ContentJSON json.RawMessage `json:"contentJSON"`
}

// CreatedItem is the result of a create: the type and the freshly
// allocated bare id.
type CreatedItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// record is the persisted table shape. contentJSON is stored serialized.
type record struct {
	OwnerID     string   `dynamodbav:"ownerID"`
	ID          string   `dynamodbav:"id"`
	Type        string   `dynamodbav:"type"`
	Name        string   `dynamodbav:"name"`
	Tags        []string `dynamodbav:"tags"`
	ContentJSON string   `dynamodbav:"contentJSON"`
}

// itemTypes is the closed set of content types the API accepts.
var itemTypes = map[string]struct{}{
	"collection": {},
	"record":     {},
	"picture":    {},
	"story":      {},
	"screen":     {},
	"message":    {},
	"promotion":  {},
	"component":  {},
}

// ValidType reports whether t is a known item type.
func ValidType(t string) bool {
	_, ok := itemTypes[t]
	return ok
}

// unmarshalItem converts a raw DynamoDB item into an Item.
func unmarshalItem(raw map[string]types.AttributeValue) (*Item, error) {
	var rec record
	if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return rec.toItem()
}

// toItem reshapes a persisted record for callers: strips the type prefix
// from the sort key and parses the content blob.
func (r record) toItem() (*Item, error) {
	_, bareID, err := key.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", r.ID, err)
	}
	if !json.Valid([]byte(r.ContentJSON)) {
		return nil, fmt.Errorf("item %q: %w", r.ID, ErrInvalidContent)
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Item{
		Type:        r.Type,
		ID:          bareID,
		Name:        r.Name,
		Tags:        tags,
		ContentJSON: json.RawMessage(r.ContentJSON),
	}, nil
}
