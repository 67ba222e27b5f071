package handler

import "net/http"

// CategoryHandler lists the labels the classifier can assign.
type CategoryHandler struct {
	labels func() []string
}

// NewCategoryHandler creates a CategoryHandler reading labels from fn.
func NewCategoryHandler(fn func() []string) *CategoryHandler {
	return &CategoryHandler{labels: fn}
}

// ListCategories returns the labels in evaluation order, fallback last.
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.labels()})
}
