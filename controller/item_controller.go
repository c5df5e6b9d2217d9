package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace-feed/model"
)

type ItemReader interface {
	GetItemByID(ctx context.Context, id string) (*model.Item, error)
}

type ItemController struct {
	usecase ItemReader
}

func NewItemController(usecase ItemReader) *ItemController {
	return &ItemController{usecase: usecase}
}

// HandleItemDetail serves GET /items/{id}.
func (c *ItemController) HandleItemDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := c.usecase.GetItemByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
