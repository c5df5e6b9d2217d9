package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"marketplace-feed/model"
)

// AdaptationDispatcher starts best-effort preference adaptation.
type AdaptationDispatcher interface {
	Dispatch(buyerID, itemID string)
}

type ChatUsecase struct {
	items    ItemStore
	msgs     MessageStore
	adaptive AdaptationDispatcher
}

func NewChatUsecase(items ItemStore, msgs MessageStore, adaptive AdaptationDispatcher) *ChatUsecase {
	return &ChatUsecase{items: items, msgs: msgs, adaptive: adaptive}
}

// SendMessage stores a message from senderID to receiverID about itemID. When
// it is the first message the buyer sends the seller about the item,
// preference adaptation is started after the message is stored. Adaptation
// cannot fail the send.
func (u *ChatUsecase) SendMessage(ctx context.Context, senderID, receiverID, itemID, content string) (*model.Message, error) {
	content = model.Truncate(strings.TrimSpace(content), model.MaxMessageLen)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == "" || receiverID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: sender, receiver and item are required", ErrInvalidRequest)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidRequest)
	}

	item, err := loadItem(ctx, u.items, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != senderID && item.OwnerID != receiverID {
		return nil, fmt.Errorf("%w: one side of the chat must own the item", ErrInvalidRequest)
	}

	// Checked before the insert, otherwise the new message counts as prior.
	seen, err := u.msgs.Exists(ctx, itemID, senderID, receiverID)
	if err != nil {
		log.Warn().Err(err).Str("stage", "adapt").Str("item_id", itemID).Msg("could not check thread history, skipping adaptation")
		seen = true
	}

	msg := &model.Message{
		ID:         NewID(),
		ItemID:     itemID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := u.msgs.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: save message: %v", ErrStore, err)
	}

	if !seen && senderID != item.OwnerID && u.adaptive != nil {
		u.adaptive.Dispatch(senderID, itemID)
	}
	return msg, nil
}

func (u *ChatUsecase) GetMessages(ctx context.Context, itemID, userID string) ([]model.Message, error) {
	if itemID == "" || userID == "" {
		return nil, fmt.Errorf("%w: item and user are required", ErrInvalidRequest)
	}
	msgs, err := u.msgs.GetByItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", ErrStore, err)
	}
	return msgs, nil
}
