package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/service"
)

type categoryHandler struct {
	responder
	categorySvc service.CategoryService
}

func newCategoryHandler(rs responder, categorySvc service.CategoryService) *categoryHandler {
	return &categoryHandler{responder: rs, categorySvc: categorySvc}
}

func (h *categoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categorySvc.ListAllCategories(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("category service list all categories: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, categories)
}

func (h *categoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var params service.CreateCategoryParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, r, apperr.ValidationErr.WithMsg("invalid request body").WrapParent(err))
		return
	}

	category, err := h.categorySvc.CreateCategory(r.Context(), params)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("category service create category: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, category)
}
