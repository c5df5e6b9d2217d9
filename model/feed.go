package model

// Filter is the structured predicate a feed request passes through to the item store.
type Filter map[string]any

// Window limits how many candidates the store returns. Zero Limit means no limit.
type Window struct {
	Limit  int
	Offset int
}

type FeedRequest struct {
	SearchText       string
	Filter           Filter
	RequestingUserID string
	Window           Window
}

type FeedResponse struct {
	Items []Item `json:"items"`
}
