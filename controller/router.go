package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
}

// NewRouter mounts every handler behind the shared middleware stack.
func NewRouter(cfg RouterConfig, feed *FeedController, items *ItemController, chat *ChatController, users *UserController) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigin))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Post("/feed", feed.Feed)
	r.Get("/items/{id}", items.HandleItemDetail)

	r.Post("/chat/messages", chat.Send)
	r.Get("/chat/messages", chat.List)

	r.Post("/register", users.Register)
	r.Get("/users/{id}", users.Get)

	return r
}
