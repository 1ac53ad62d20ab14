package handlers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/render"
	"github.com/MrSnakeDoc/snooze/internal/state"
)

type section string

const (
	sectionAll       section = "/"
	sectionFavorites section = "/favorites"
	sectionOwn       section = "/my-stories"
)

// returnTo maps a form's return value onto a known section.
func returnTo(raw string) section {
	switch section(raw) {
	case sectionFavorites, sectionOwn:
		return section(raw)
	default:
		return sectionAll
	}
}

// loadState restores the request's session and fetches the story list.
// hadSession reports whether the request carried stored credentials.
func loadState(ctx context.Context, d deps.Deps, r *http.Request) (st *state.State, hadSession bool, err error) {
	creds, err := d.Sessions.Load(ctx, r)
	if err != nil {
		d.Logger.Warn("session store lookup failed, continuing anonymous", logger.Error(err))
	}

	var restore *state.Credentials
	if creds != nil {
		restore = &state.Credentials{Token: creds.Token, Username: creds.Username}
	}

	st, err = state.Load(ctx, d.Stories, restore)
	return st, restore != nil, err
}

func body(st *state.State, sec section) (template.HTML, error) {
	user := st.User()
	switch {
	case sec == sectionFavorites && user != nil:
		return render.Favorites(user)
	case sec == sectionOwn && user != nil:
		return render.OwnStories(user)
	default:
		return render.AllStories(st.Stories(), user)
	}
}

// writePage renders sec of st as a full page with the given status.
func writePage(w http.ResponseWriter, d deps.Deps, st *state.State, sec section, status int, flash *render.Flash) {
	fragment, err := body(st, sec)
	if err != nil {
		d.Logger.Error("render failed", logger.String("section", string(sec)), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, render.PageData{User: st.User(), Flash: flash, Body: fragment}); err != nil {
		d.Logger.Error("render failed", logger.String("section", "page"), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail re-renders sec with err shown as a flash message. st may be nil,
// in which case the page state is loaded again.
func fail(w http.ResponseWriter, r *http.Request, d deps.Deps, st *state.State, sec section, err error) {
	status := statusFor(err)
	level := d.Logger.Info
	if status >= http.StatusInternalServerError {
		level = d.Logger.Warn
	}
	level("request failed",
		logger.String("path", r.URL.Path),
		logger.Int("status", status),
		logger.Error(err))

	if st == nil {
		var loadErr error
		st, _, loadErr = loadState(r.Context(), d, r)
		if loadErr != nil {
			st = state.New(d.Stories)
		}
	}
	writePage(w, d, st, sec, status, &render.Flash{Kind: "error", Message: messageFor(err)})
}

// redirect finishes a successful POST.
func redirect(w http.ResponseWriter, r *http.Request, to section) {
	http.Redirect(w, r, string(to), http.StatusSeeOther)
}
