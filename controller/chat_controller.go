package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"marketplace-feed/model"
)

type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID, itemID, content string) (*model.Message, error)
	GetMessages(ctx context.Context, itemID, userID string) ([]model.Message, error)
}

type ChatController struct {
	usecase ChatService
}

func NewChatController(usecase ChatService) *ChatController {
	return &ChatController{usecase: usecase}
}

type sendMessageRequest struct {
	ItemID     string `json:"itemId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

// Send serves POST /chat/messages. The sender is the caller.
func (c *ChatController) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, err := c.usecase.SendMessage(r.Context(), r.Header.Get(userHeader), req.ReceiverID, req.ItemID, req.Message)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// List serves GET /chat/messages?itemId=.
func (c *ChatController) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.usecase.GetMessages(r.Context(), r.URL.Query().Get("itemId"), r.Header.Get(userHeader))
	if err != nil {
		fail(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
