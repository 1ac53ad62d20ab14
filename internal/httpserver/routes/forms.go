package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/mw"
)

func init() { Register("forms", registerForms) }

func registerForms(r chi.Router, d deps.Deps) {
	forms := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	if d.PostLimit != nil {
		forms = forms.With(d.PostLimit)
	}

	forms.Post("/login", handlers.Login(d))
	forms.Post("/signup", handlers.Signup(d))
	forms.Post("/logout", handlers.Logout(d))

	forms.Post("/stories", handlers.SubmitStory(d))
	forms.Post("/stories/{storyID}/delete", handlers.DeleteStory(d))
	forms.Post("/stories/{storyID}/favorite", handlers.ToggleFavorite(d))
}
