package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Changes is a partial set of field updates for an item. Nil fields are
// left untouched; only supplied fields appear in the update expression.
type Changes struct {
	Name               *string
	Tags               []string
	RawTags            *string
	Version            *int64
	PreviewDestination *string
	ContentJSON        json.RawMessage
}

// build translates the changeset into a SET expression with placeholder
// maps. Attribute names and values never appear in the expression string
// itself, so no caller-supplied data can alter its structure.
func (c Changes) build() (string, map[string]string, map[string]types.AttributeValue, error) {
	type field struct {
		attr  string
		value types.AttributeValue
	}
	var fields []field

	if c.Name != nil {
		fields = append(fields, field{"name", &types.AttributeValueMemberS{Value: *c.Name}})
	}
	if c.Tags != nil {
		av, err := attributevalue.Marshal(c.Tags)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal tags: %w", err)
		}
		fields = append(fields, field{"tags", av})
	}
	if c.RawTags != nil {
		fields = append(fields, field{"rawTags", &types.AttributeValueMemberS{Value: *c.RawTags}})
	}
	if c.Version != nil {
		fields = append(fields, field{"version", &types.AttributeValueMemberN{
			Value: strconv.FormatInt(*c.Version, 10),
		}})
	}
	if c.PreviewDestination != nil {
		fields = append(fields, field{"previewDestination", &types.AttributeValueMemberS{Value: *c.PreviewDestination}})
	}
	if c.ContentJSON != nil {
		if !json.Valid(c.ContentJSON) {
			return "", nil, nil, ErrInvalidContent
		}
		fields = append(fields, field{"contentJSON", &types.AttributeValueMemberS{Value: string(c.ContentJSON)}})
	}

	if len(fields) == 0 {
		return "", nil, nil, ErrNoChanges
	}

	setClauses := make([]string, 0, len(fields))
	exprNames := make(map[string]string, len(fields))
	exprValues := make(map[string]types.AttributeValue, len(fields))
	for i, f := range fields {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		exprNames[nameKey] = f.attr
		exprValues[valueKey] = f.value
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	return "SET " + strings.Join(setClauses, ", "), exprNames, exprValues, nil
}
