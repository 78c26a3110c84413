package httpapi

import (
	"encoding/json"
	"errors"

	"github.com/jacentio/shelf/store"
)

// CreateItemRequest is the POST body for creating an item. contentJSON is
// required; name and tags are optional.
type CreateItemRequest struct {
	ContentJSON json.RawMessage `json:"contentJSON"`
	Name        string          `json:"name"`
	Tags        []string        `json:"tags"`
}

func (r CreateItemRequest) validate() error {
	if len(r.ContentJSON) == 0 {
		return errors.New("contentJSON is required")
	}
	if !json.Valid(r.ContentJSON) {
		return errors.New("contentJSON must be valid JSON")
	}
	return nil
}

// PatchItemRequest is the PATCH body for a partial update. Every field is
// optional; absent fields are left untouched.
type PatchItemRequest struct {
	Version            *int64          `json:"version"`
	ContentJSON        json.RawMessage `json:"contentJSON"`
	Name               *string         `json:"name"`
	RawTags            *string         `json:"rawTags"`
	Tags               []string        `json:"tags"`
	PreviewDestination *string         `json:"previewDestination"`
}

// changes maps the submitted fields onto a store changeset.
func (r PatchItemRequest) changes() store.Changes {
	return store.Changes{
		Name:               r.Name,
		Tags:               r.Tags,
		RawTags:            r.RawTags,
		Version:            r.Version,
		PreviewDestination: r.PreviewDestination,
		ContentJSON:        r.ContentJSON,
	}
}
