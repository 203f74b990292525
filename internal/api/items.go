package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/erazemk/stockmate/internal/model"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	Inventory InventoryStore
	Logger    *slog.Logger
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type updateItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.GetAllItems(r.Context())
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.Inventory.AddItem(r.Context(), req.Name, req.Description, req.Quantity)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]int64{"id": id})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	h.respondItem(w, r, id)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found, err := h.Inventory.UpdateItem(r.Context(), model.Item{ID: id, Name: req.Name, Quantity: req.Quantity})
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.respondItem(w, r, id)
}

// Delete handles DELETE /api/items/{id}. Callers confirm with the user first.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	found, err := h.Inventory.DeleteItem(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if claims := GetClaims(r.Context()); claims != nil {
		h.Logger.InfoContext(r.Context(), "item deleted", "id", id, "user", claims.Username)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Increment handles POST /api/items/{id}/increment.
func (h *ItemsHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Inventory.IncrementQuantity)
}

// Decrement handles POST /api/items/{id}/decrement.
func (h *ItemsHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Inventory.DecrementQuantity)
}

func (h *ItemsHandler) adjust(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (bool, error)) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	found, err := fn(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.respondItem(w, r, id)
}

// respondItem writes the current state of an item, or 404.
func (h *ItemsHandler) respondItem(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := h.Inventory.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
