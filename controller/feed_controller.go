package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"marketplace-feed/model"
	"marketplace-feed/usecase"
)

type FeedService interface {
	Feed(ctx context.Context, req model.FeedRequest) ([]model.Item, error)
}

type FeedController struct {
	usecase FeedService
}

func NewFeedController(usecase FeedService) *FeedController {
	return &FeedController{usecase: usecase}
}

// feedRequestDTO keeps searchText and filter raw so their JSON types can be
// checked before anything reaches the store. Both are required: searchText
// may be "" but not absent or null, filter may be {} but not absent or null.
type feedRequestDTO struct {
	SearchText       json.RawMessage `json:"searchText"`
	Filter           json.RawMessage `json:"filter"`
	RequestingUserID string          `json:"requestingUserId"`
	Limit            int             `json:"limit"`
	Offset           int             `json:"offset"`
}

// Feed serves POST /feed.
func (c *FeedController) Feed(w http.ResponseWriter, r *http.Request) {
	var dto feedRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := dto.toRequest()
	if err != nil {
		fail(w, r, err)
		return
	}
	if req.RequestingUserID == "" {
		req.RequestingUserID = r.Header.Get(userHeader)
	}

	items, err := c.usecase.Feed(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, model.FeedResponse{Items: items})
}

func (d feedRequestDTO) toRequest() (model.FeedRequest, error) {
	req := model.FeedRequest{
		RequestingUserID: d.RequestingUserID,
		Window:           model.Window{Limit: d.Limit, Offset: d.Offset},
	}
	if isNull(d.SearchText) || json.Unmarshal(d.SearchText, &req.SearchText) != nil {
		return req, fmt.Errorf("%w: searchText must be a string", usecase.ErrInvalidRequest)
	}
	if isNull(d.Filter) || json.Unmarshal(d.Filter, &req.Filter) != nil {
		return req, fmt.Errorf("%w: filter must be an object", usecase.ErrInvalidRequest)
	}
	return req, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
