package model

import "time"

// MaxMessageLen is the character limit for stored chat content.
const MaxMessageLen = 255

type Message struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
