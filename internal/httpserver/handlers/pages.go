package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/render"
	"github.com/MrSnakeDoc/snooze/internal/state"
)

// Index shows every story.
func Index(d deps.Deps) http.HandlerFunc { return page(d, sectionAll) }

// Favorites shows the signed-in user's favorites.
func Favorites(d deps.Deps) http.HandlerFunc { return page(d, sectionFavorites) }

// MyStories shows the stories the signed-in user posted.
func MyStories(d deps.Deps) http.HandlerFunc { return page(d, sectionOwn) }

func page(d deps.Deps, sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := takeFlash(w, r)

		st, hadSession, err := loadState(r.Context(), d, r)
		if err != nil {
			d.Logger.Warn("story list unavailable", logger.Error(err))
			writePage(w, d, state.New(d.Stories), sectionAll, statusFor(err),
				&render.Flash{Kind: "error", Message: messageFor(err)})
			return
		}

		// Stored credentials the service no longer accepts.
		if hadSession && !st.SignedIn() {
			if err := d.Sessions.End(r.Context(), w, r); err != nil {
				d.Logger.Warn("failed to drop stale session", logger.Error(err))
			}
			if flash == nil {
				flash = &render.Flash{Kind: "info", Message: "Your session expired, please log in again."}
			}
		}

		if sec != sectionAll && !st.SignedIn() {
			setFlash(w, "info", "Log in to see that page.")
			redirect(w, r, sectionAll)
			return
		}

		writePage(w, d, st, sec, http.StatusOK, flash)
	}
}
