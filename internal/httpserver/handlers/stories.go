package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/state"
)

type storyForm struct {
	Title  string `validate:"required"`
	Author string `validate:"required"`
	URL    string `validate:"required"`
}

var errSignedOut = &domain.APIError{Op: "session", Kind: domain.ErrAuth, Message: "Log in first."}

// signedIn loads page state and requires a user.
func signedIn(w http.ResponseWriter, r *http.Request, d deps.Deps) (*state.State, bool) {
	st, _, err := loadState(r.Context(), d, r)
	if err != nil {
		fail(w, r, d, state.New(d.Stories), sectionAll, err)
		return nil, false
	}
	if !st.SignedIn() {
		fail(w, r, d, st, sectionAll, errSignedOut)
		return nil, false
	}
	return st, true
}

// SubmitStory posts a new story as the signed-in user.
func SubmitStory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := storyForm{
			Title:  strings.TrimSpace(r.PostFormValue("title")),
			Author: strings.TrimSpace(r.PostFormValue("author")),
			URL:    strings.TrimSpace(r.PostFormValue("url")),
		}

		st, ok := signedIn(w, r, d)
		if !ok {
			return
		}
		if err := checkForm("create_story", form); err != nil {
			fail(w, r, d, st, sectionAll, err)
			return
		}
		if _, err := (domain.Story{URL: form.URL}).HostName(); err != nil {
			fail(w, r, d, st, sectionAll, err)
			return
		}

		story, err := st.Stories().AddStory(r.Context(), st.User(), domain.NewStory{
			Title:  form.Title,
			Author: form.Author,
			URL:    form.URL,
		})
		if err != nil {
			fail(w, r, d, st, sectionAll, err)
			return
		}

		d.Logger.Info("story added",
			logger.String("story_id", story.StoryID),
			logger.String("username", st.User().Username))
		setFlash(w, "info", "Story added.")
		redirect(w, r, sectionAll)
	}
}

// DeleteStory removes one of the signed-in user's stories.
func DeleteStory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID := chi.URLParam(r, "storyID")

		st, ok := signedIn(w, r, d)
		if !ok {
			return
		}
		if !st.User().IsOwn(storyID) {
			fail(w, r, d, st, sectionOwn, &domain.APIError{
				Op:      "remove_story",
				Status:  http.StatusForbidden,
				Kind:    domain.ErrAuth,
				Message: "You can only delete your own stories.",
			})
			return
		}
		if err := st.Stories().RemoveStory(r.Context(), st.User(), storyID); err != nil {
			fail(w, r, d, st, sectionOwn, err)
			return
		}

		d.Logger.Info("story removed",
			logger.String("story_id", storyID),
			logger.String("username", st.User().Username))
		redirect(w, r, sectionOwn)
	}
}

// ToggleFavorite stars or unstars a story for the signed-in user.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID := chi.URLParam(r, "storyID")
		back := returnTo(r.PostFormValue("return"))

		st, ok := signedIn(w, r, d)
		if !ok {
			return
		}
		user := st.User()

		var err error
		if user.IsFavorite(storyID) {
			err = user.RemoveFavorite(r.Context(), storyID)
		} else if story, found := st.Catalog().Get(storyID); found {
			err = user.AddFavorite(r.Context(), story)
		} else {
			err = &domain.APIError{Op: "add_favorite", Kind: domain.ErrNotFound, Message: "That story no longer exists."}
		}
		if err != nil {
			fail(w, r, d, st, back, err)
			return
		}
		redirect(w, r, back)
	}
}
