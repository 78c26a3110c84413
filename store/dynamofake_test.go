package store_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for DynamoDB. It understands the
// expression shapes the store emits: ADD counter increments, SET clause
// lists with placeholder maps, attribute_exists/attribute_not_exists
// conditions, and key-condition queries with and without the type index.
type fakeDynamo struct {
	mu       sync.Mutex
	keyAttrs map[string][]string
	tables   map[string]map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keyAttrs: map[string][]string{
			"shelf_items":    {"ownerID", "id"},
			"shelf_counters": {"type"},
		},
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func sval(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	dup := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = map[string]map[string]types.AttributeValue{}
		f.tables[name] = t
	}
	return t
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) string {
	attrs, ok := f.keyAttrs[table]
	if !ok {
		panic(fmt.Sprintf("fakeDynamo: unknown table %q", table))
	}
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, sval(item[attr]))
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := f.table(aws.ToString(in.TableName))
	item, ok := table[f.keyOf(aws.ToString(in.TableName), in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.TableName)
	table := f.table(name)
	k := f.keyOf(name, in.Item)

	if strings.Contains(aws.ToString(in.ConditionExpression), "attribute_not_exists") {
		if _, exists := table[k]; exists {
			return nil, &types.ConditionalCheckFailedException{
				Message: aws.String("The conditional request failed"),
			}
		}
	}

	table[k] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.TableName)
	table := f.table(name)
	k := f.keyOf(name, in.Key)
	expr := aws.ToString(in.UpdateExpression)

	item, exists := table[k]

	switch {
	case strings.HasPrefix(expr, "ADD "):
		parts := strings.Fields(strings.TrimPrefix(expr, "ADD "))
		if len(parts) != 2 {
			return nil, fmt.Errorf("fakeDynamo: unsupported ADD expression %q", expr)
		}
		attr := f.resolveName(parts[0], in.ExpressionAttributeNames)
		delta := f.numberValue(parts[1], in.ExpressionAttributeValues)

		if !exists {
			item = copyItem(in.Key)
			table[k] = item
		}
		var current int64
		if n, ok := item[attr].(*types.AttributeValueMemberN); ok {
			current, _ = strconv.ParseInt(n.Value, 10, 64)
		}
		updated := &types.AttributeValueMemberN{Value: strconv.FormatInt(current+delta, 10)}
		item[attr] = updated

		return &dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{attr: updated},
		}, nil

	case strings.HasPrefix(expr, "SET "):
		if strings.Contains(aws.ToString(in.ConditionExpression), "attribute_exists") && !exists {
			return nil, &types.ConditionalCheckFailedException{
				Message: aws.String("The conditional request failed"),
			}
		}
		if !exists {
			item = copyItem(in.Key)
			table[k] = item
		}
		for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
			lhs, rhs, ok := strings.Cut(clause, " = ")
			if !ok {
				return nil, fmt.Errorf("fakeDynamo: unsupported SET clause %q", clause)
			}
			attr := f.resolveName(lhs, in.ExpressionAttributeNames)
			value, ok := in.ExpressionAttributeValues[rhs]
			if !ok {
				return nil, fmt.Errorf("fakeDynamo: unresolved value placeholder %q", rhs)
			}
			item[attr] = value
		}

		return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
	}

	return nil, fmt.Errorf("fakeDynamo: unsupported update expression %q", expr)
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.TableName)
	delete(f.table(name), f.keyOf(name, in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := f.table(aws.ToString(in.TableName))
	wantOwner := sval(in.ExpressionAttributeValues[":owner"])
	wantType := sval(in.ExpressionAttributeValues[":type"])

	var matched []map[string]types.AttributeValue
	for _, item := range table {
		if sval(item["ownerID"]) != wantOwner {
			continue
		}
		if in.IndexName != nil && sval(item["type"]) != wantType {
			continue
		}
		matched = append(matched, copyItem(item))
	}
	sort.Slice(matched, func(i, j int) bool {
		return sval(matched[i]["id"]) < sval(matched[j]["id"])
	})

	out := &dynamodb.QueryOutput{Count: int32(len(matched))}
	if in.Select != types.SelectCount {
		out.Items = matched
	}
	return out, nil
}

func (f *fakeDynamo) resolveName(placeholder string, names map[string]string) string {
	if attr, ok := names[placeholder]; ok {
		return attr
	}
	return placeholder
}

func (f *fakeDynamo) numberValue(placeholder string, values map[string]types.AttributeValue) int64 {
	if n, ok := values[placeholder].(*types.AttributeValueMemberN); ok {
		v, _ := strconv.ParseInt(n.Value, 10, 64)
		return v
	}
	return 0
}
