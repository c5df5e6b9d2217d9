package usecase

import (
	"context"

	"marketplace-feed/model"
	"marketplace-feed/pkg/oracle"
)

type ItemStore interface {
	FindByFilter(ctx context.Context, f model.Filter, w model.Window) ([]model.Item, error)
	GetByID(ctx context.Context, id string) (*model.Item, error)
}

type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (string, error)
	UpdatePreferences(ctx context.Context, userID, prefs string) error
}

type UserStore interface {
	PreferenceStore
	Insert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	Exists(ctx context.Context, itemID, senderID, receiverID string) (bool, error)
	GetByItemForUser(ctx context.Context, itemID, userID string) ([]model.Message, error)
}

// Ranker returns the oracle's raw ordering answer for query and candidates.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []oracle.Candidate) (string, error)
}

type PreferenceMerger interface {
	Merge(ctx context.Context, current, summary string) (string, error)
}
