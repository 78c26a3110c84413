// Package key builds and parses the composite keys used in the items table.
package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins an entity type and its id into a composite key.
// Allocated ids are plain integers, so the first separator always
// marks the type/id boundary.
const Separator = "-"

// Format joins an entity type and id into a composite key, e.g. "picture-7".
func Format(entityType, id string) string {
	return entityType + Separator + id
}

// FormatID joins an entity type and an allocated numeric id.
func FormatID(entityType string, n int64) string {
	return Format(entityType, strconv.FormatInt(n, 10))
}

// Parse splits a composite key into its type and bare id.
// Format(Parse(k)) == k for every key produced by Format.
func Parse(composite string) (entityType, id string, err error) {
	i := strings.Index(composite, Separator)
	if i <= 0 || i == len(composite)-1 {
		return "", "", fmt.Errorf("key: malformed composite key %q", composite)
	}
	return composite[:i], composite[i+1:], nil
}

// OwnerKey computes the partition key for an owner, e.g. "organization-1".
func OwnerKey(ownerType, ownerID string) string {
	return Format(ownerType, ownerID)
}
