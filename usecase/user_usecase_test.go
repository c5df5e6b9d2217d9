package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-feed/dao"
	"marketplace-feed/model"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	u := NewUserUsecase(users)

	first, err := u.RegisterUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)
	assert.Len(t, first.ID, 26)
	assert.Empty(t, first.Preferences)

	again, err := u.RegisterUser(ctx, "Ann", " ann@example.com ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = u.RegisterUser(ctx, "", "x@example.com")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(model.User{ID: "u1", Preferences: "bikes"})
	u := NewUserUsecase(users)

	got, err := u.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "bikes", got.Preferences)

	_, err = u.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	users.getErr = errors.New("down")
	_, err = u.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrStore)
}

func TestGetItemByID(t *testing.T) {
	u := NewItemUsecase(&fakeItems{items: []model.Item{{ID: "A"}}})
	item, err := u.GetItemByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", item.ID)

	_, err = u.GetItemByID(context.Background(), "B")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetItemByID_Errors(t *testing.T) {
	items := &fakeItems{rowErrs: map[string]error{
		"broken": fmt.Errorf("%w: name is NULL", dao.ErrMalformedItem),
	}}
	u := NewItemUsecase(items)

	_, err := u.GetItemByID(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NotErrorIs(t, err, ErrStore)

	items.err = errors.New("connection reset")
	_, err = u.GetItemByID(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrStore)
}

func TestNewIDMonotonic(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}
