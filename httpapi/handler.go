// Package httpapi exposes the content items REST surface.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/jacentio/shelf/store"
)

// ItemStore is the repository surface the handlers need.
// *store.Store satisfies it.
type ItemStore interface {
	CreateItem(ctx context.Context, owner store.Owner, itemType, name string, tags []string, contentJSON json.RawMessage) (store.CreatedItem, error)
	ReadItem(ctx context.Context, owner store.Owner, itemType, id string) (*store.Item, error)
	ReadAllItemsForOwner(ctx context.Context, owner store.Owner) ([]store.Item, error)
	ReadAllItemsForType(ctx context.Context, owner store.Owner, itemType string) ([]store.Item, error)
	CountItemsForOwner(ctx context.Context, owner store.Owner) (int64, error)
	CountItemsForType(ctx context.Context, owner store.Owner, itemType string) (int64, error)
	UpdateItemWithChanges(ctx context.Context, owner store.Owner, itemType, id string, changes store.Changes) (*store.Item, error)
	DeleteItem(ctx context.Context, owner store.Owner, itemType, id string) error
}

// Handler serves the owner-scoped item routes.
type Handler struct {
	store  ItemStore
	auth   Authorizer
	logger *slog.Logger
}

// New creates a new Handler.
func New(s ItemStore, auth Authorizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		auth:   auth,
		logger: logger,
	}
}

// Routes returns the routes for the owner-scoped API.
//
// Every route under an owner runs the precondition chain first: resolve the
// owner from path params, then authorize it. Item-typed routes additionally
// resolve and validate the type. A failing precondition becomes the response
// and nothing after it runs.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/1/@{ownerType}/{ownerID}", func(r chi.Router) {
		r.Use(h.resolveOwner)
		r.Use(h.authorize)

		r.Get("/", h.echoOwner)
		r.Get("/preview", h.previewScreens)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.listItems)
			r.Get("/count", h.countItems)

			r.Route("/type:{itemType}", func(r chi.Router) {
				r.Use(h.resolveType)

				r.Get("/", h.listItemsByType)
				r.Post("/", h.createItem)
				r.Get("/{itemID}", h.getItem)
				r.Patch("/{itemID}", h.patchItem)
				r.Delete("/{itemID}", h.deleteItem)
			})
		})
	})

	return r
}

// OwnerResponse echoes the resolved owner identity.
type OwnerResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (h *Handler) echoOwner(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	render.JSON(w, r, OwnerResponse{Type: owner.Type, ID: owner.ID})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	items, err := h.store.ReadAllItemsForOwner(r.Context(), owner)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

// CountResponse carries an item count.
type CountResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) countItems(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	count, err := h.store.CountItemsForOwner(r.Context(), owner)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render.JSON(w, r, CountResponse{Count: count})
}

// listItemsByType serves both the per-type listing and, when the path used
// the "type:{itemType}:count" form, the per-type count.
func (h *Handler) listItemsByType(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	typ := typeFrom(r.Context())

	if typ.countOnly {
		count, err := h.store.CountItemsForType(r.Context(), owner, typ.name)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		render.JSON(w, r, CountResponse{Count: count})
		return
	}

	items, err := h.store.ReadAllItemsForType(r.Context(), owner, typ.name)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	typ := typeFrom(r.Context())

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := req.validate(); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateItem(r.Context(), owner, typ.name, req.Name, req.Tags, req.ContentJSON)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/1/@%s/%s/items/type:%s/%s", owner.Type, owner.ID, created.Type, created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	typ := typeFrom(r.Context())
	id := chi.URLParam(r, "itemID")

	item, err := h.store.ReadItem(r.Context(), owner, typ.name, id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if item == nil {
		renderError(w, r, http.StatusNotFound, "item not found")
		return
	}
	render.JSON(w, r, item)
}

func (h *Handler) patchItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	typ := typeFrom(r.Context())
	id := chi.URLParam(r, "itemID")

	var req PatchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	item, err := h.store.UpdateItemWithChanges(r.Context(), owner, typ.name, id, req.changes())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render.JSON(w, r, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	typ := typeFrom(r.Context())
	id := chi.URLParam(r, "itemID")

	if err := h.store.DeleteItem(r.Context(), owner, typ.name, id); err != nil {
		h.storeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
