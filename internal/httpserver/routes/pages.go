package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/mw"
)

func init() { Register("pages", registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	pages := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	pages.Get("/", handlers.Index(d))
	pages.Get("/favorites", handlers.Favorites(d))
	pages.Get("/my-stories", handlers.MyStories(d))
}
