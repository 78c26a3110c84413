package store

import "errors"

var (
	// ErrNotFound is returned when an update or delete targets an item
	// that doesn't exist. Point lookups return (nil, nil) instead.
	ErrNotFound = errors.New("shelf: item not found")

	// ErrAlreadyExists is returned when a create collides with an
	// existing composite key.
	ErrAlreadyExists = errors.New("shelf: item already exists")

	// ErrInvalidType is returned for an item type outside the known set.
	ErrInvalidType = errors.New("shelf: unknown item type")

	// ErrInvalidContent is returned when contentJSON is not well-formed JSON.
	ErrInvalidContent = errors.New("shelf: contentJSON is not valid JSON")

	// ErrNoChanges is returned when a changeset contains no fields.
	ErrNoChanges = errors.New("shelf: empty changeset")
)
