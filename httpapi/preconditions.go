package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacentio/shelf/store"
)

// ErrNotAuthorized is returned by an Authorizer that rejects an owner.
var ErrNotAuthorized = errors.New("httpapi: owner not authorized")

// Authorizer decides whether requests for an owner may proceed.
type Authorizer interface {
	Authorize(owner store.Owner) error
}

// AllowList authorizes a fixed set of "type:id" owner pairs.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from "type:id" entries.
func NewAllowList(entries []string) AllowList {
	list := make(AllowList, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			list[e] = struct{}{}
		}
	}
	return list
}

// Authorize implements Authorizer.
func (a AllowList) Authorize(owner store.Owner) error {
	if _, ok := a[owner.Type+":"+owner.ID]; ok {
		return nil
	}
	return ErrNotAuthorized
}

type ctxKey int

const (
	ownerCtxKey ctxKey = iota
	typeCtxKey
)

// typeSpec is the resolved item type from the path, including whether the
// ":count" form was requested.
type typeSpec struct {
	name      string
	countOnly bool
}

func ownerFrom(ctx context.Context) store.Owner {
	owner, _ := ctx.Value(ownerCtxKey).(store.Owner)
	return owner
}

func typeFrom(ctx context.Context) typeSpec {
	typ, _ := ctx.Value(typeCtxKey).(typeSpec)
	return typ
}

// resolveOwner reads the owner from path params and stores it in the
// request context for the rest of the chain.
func (h *Handler) resolveOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerType := chi.URLParam(r, "ownerType")
		ownerID := chi.URLParam(r, "ownerID")
		if ownerType == "" || ownerID == "" {
			renderError(w, r, http.StatusBadRequest, "missing owner")
			return
		}

		owner := store.Owner{Type: ownerType, ID: ownerID}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerCtxKey, owner)))
	})
}

// authorize checks the resolved owner against the Authorizer. It depends on
// resolveOwner having run; a rejection short-circuits before any store call.
func (h *Handler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r.Context())
		if err := h.auth.Authorize(owner); err != nil {
			h.logger.Warn("owner rejected", "ownerType", owner.Type, "ownerID", owner.ID)
			renderError(w, r, http.StatusForbidden, "not authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolveType validates the item type from the path. The path form
// "type:{itemType}:count" shares the route pattern with "type:{itemType}",
// so the captured param may carry a ":count" suffix; it is split off here.
func (h *Handler) resolveType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		param := chi.URLParam(r, "itemType")

		typ := typeSpec{name: param}
		if name, ok := strings.CutSuffix(param, ":count"); ok {
			typ = typeSpec{name: name, countOnly: true}
		}
		if !store.ValidType(typ.name) {
			renderError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown item type %q", typ.name))
			return
		}
		// The ":count" form only exists for the type listing path. Item
		// params aren't bound yet when this middleware runs, so the check
		// uses the unmatched route remainder instead.
		if typ.countOnly {
			routePath := chi.RouteContext(r.Context()).RoutePath
			if r.Method != http.MethodGet || (routePath != "" && routePath != "/") {
				renderError(w, r, http.StatusBadRequest, fmt.Sprintf("malformed item type %q", param))
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), typeCtxKey, typ)))
	})
}
