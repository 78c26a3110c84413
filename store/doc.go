// Package store provides the DynamoDB data access layer for content items.
//
// Items live in a single table keyed by a composite partition key (the
// owning tenant, e.g. "organization-1") and a composite sort key (the item's
// type and allocated id, e.g. "picture-7"). A global secondary index keyed
// by item type serves per-type listings.
//
// # Operations
//
// The [Store] exposes the item repository operations:
//
//   - [Store.CreateItem] - allocate an id and write a new record
//   - [Store.ReadItem] - point lookup; absence returns (nil, nil)
//   - [Store.ReadAllItemsForOwner] / [Store.ReadAllItemsForType]
//   - [Store.CountItemsForOwner] / [Store.CountItemsForType]
//   - [Store.UpdateItemWithChanges] - partial update from a [Changes] set
//   - [Store.UpdateNameForItem] / [Store.UpdateTagsForItem]
//   - [Store.DeleteItem]
//
// # ID allocation
//
// [Store.NextID] atomically increments a per-type counter record in a
// dedicated counters table. Two concurrent callers for the same type never
// observe the same value; the guarantee comes entirely from DynamoDB's
// atomic ADD, the store holds no locks.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - item doesn't exist (update/delete paths)
//   - [ErrAlreadyExists] - create collided with an existing key
//   - [ErrInvalidType] - item type outside the known set
//   - [ErrInvalidContent] - contentJSON is not well-formed JSON
//   - [ErrNoChanges] - empty changeset
//
// Everything else from the DynamoDB client propagates verbatim; the store
// never retries.
package store
