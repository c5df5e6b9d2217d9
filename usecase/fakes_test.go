package usecase

import (
	"context"
	"sync"

	"marketplace-feed/dao"
	"marketplace-feed/model"
	"marketplace-feed/pkg/oracle"
)

type fakeItems struct {
	items   []model.Item
	err     error
	rowErrs map[string]error
	filters []model.Filter
}

func (f *fakeItems) FindByFilter(_ context.Context, flt model.Filter, _ model.Window) ([]model.Item, error) {
	f.filters = append(f.filters, flt)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*model.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.rowErrs[id]; err != nil {
		return nil, err
	}
	for _, it := range f.items {
		if it.ID == id {
			it := it
			return &it, nil
		}
	}
	return nil, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]*model.User
	getErr error
	putErr error
	writes int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*model.User{}}
	for _, u := range users {
		u := u
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetPreferences(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return "", dao.ErrNotFound
	}
	return u.Preferences, nil
}

func (f *fakeUsers) UpdatePreferences(_ context.Context, id, prefs string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	u, ok := f.users[id]
	if !ok {
		return dao.ErrNotFound
	}
	u.Preferences = prefs
	f.writes++
	return nil
}

func (f *fakeUsers) prefsOf(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Preferences
}

func (f *fakeUsers) Insert(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeRanker struct {
	calls  int
	query  string
	sent   []oracle.Candidate
	answer string
	err    error
}

func (f *fakeRanker) Rank(_ context.Context, query string, c []oracle.Candidate) (string, error) {
	f.calls++
	f.query = query
	f.sent = c
	return f.answer, f.err
}

type fakeMerger struct {
	mu      sync.Mutex
	calls   int
	current string
	summary string
	answer  string
	err     error
}

func (f *fakeMerger) Merge(_ context.Context, current, summary string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.current, f.summary = current, summary
	return f.answer, f.err
}

func (f *fakeMerger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMessages struct {
	msgs      []model.Message
	existsErr error
	createErr error
}

func (f *fakeMessages) CreateMessage(_ context.Context, m *model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMessages) Exists(_ context.Context, itemID, senderID, receiverID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, m := range f.msgs {
		if m.ItemID == itemID && m.SenderID == senderID && m.ReceiverID == receiverID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessages) GetByItemForUser(_ context.Context, itemID, userID string) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.ItemID == itemID && (m.SenderID == userID || m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

type dispatch struct{ buyer, item string }

type fakeDispatcher struct {
	calls []dispatch
}

func (f *fakeDispatcher) Dispatch(buyerID, itemID string) {
	f.calls = append(f.calls, dispatch{buyerID, itemID})
}
