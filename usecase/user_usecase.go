package usecase

import (
	"context"
	"fmt"
	"strings"

	"marketplace-feed/model"
)

type UserUsecase struct {
	repo UserStore
}

func NewUserUsecase(repo UserStore) *UserUsecase {
	return &UserUsecase{repo: repo}
}

// RegisterUser returns the user with email, creating it if needed. New users
// start with empty preferences.
func (u *UserUsecase) RegisterUser(ctx context.Context, name, email string) (*model.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidRequest)
	}

	// 1. Check if user exists (Login)
	existing, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if existing != nil {
		return existing, nil
	}

	// 2. Register New User
	user := &model.User{
		ID:    NewID(),
		Name:  name,
		Email: email,
	}
	if err := u.repo.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return user, nil
}

func (u *UserUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
