package dao

import (
	"context"
	"database/sql"

	"marketplace-feed/model"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, item_id, sender_id, receiver_id, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.ItemID, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt)
	return err
}

// Exists reports whether senderID has already messaged receiverID about itemID.
func (r *MessageRepository) Exists(ctx context.Context, itemID, senderID, receiverID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE item_id = ? AND sender_id = ? AND receiver_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, itemID, senderID, receiverID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByItemForUser lists the messages about itemID that userID sent or received,
// oldest first.
func (r *MessageRepository) GetByItemForUser(ctx context.Context, itemID, userID string) ([]model.Message, error) {
	query := `SELECT id, item_id, sender_id, receiver_id, content, created_at
              FROM messages
              WHERE item_id = ? AND (sender_id = ? OR receiver_id = ?)
              ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, itemID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ItemID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
