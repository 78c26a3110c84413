package httpapi

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/jacentio/shelf/store"
)

// PreviewResponse feeds the screen preview component: the owner's stored
// screens in listing order.
type PreviewResponse struct {
	Screens []store.Item `json:"screens"`
}

func (h *Handler) previewScreens(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	screens, err := h.store.ReadAllItemsForType(r.Context(), owner, "screen")
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render.JSON(w, r, PreviewResponse{Screens: screens})
}
