package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace-feed/model"
)

type UserService interface {
	RegisterUser(ctx context.Context, name, email string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type UserController struct {
	usecase UserService
}

func NewUserController(usecase UserService) *UserController {
	return &UserController{usecase: usecase}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register logs in an existing user by email or creates a new one.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := c.usecase.RegisterUser(r.Context(), req.Name, req.Email)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.usecase.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
