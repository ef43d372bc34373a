package handlers

import (
	"net/http"
)

// handleGetCategories lists all race categories
func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Category.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, categories)
}

// handleGetCategory returns a single category
func (h *Handlers) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	category, err := h.Category.GetCategory(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, category)
}

// handleCreateCategory creates a new race category
func (h *Handlers) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	category, err := h.Category.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, category)
}
