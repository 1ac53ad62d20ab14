package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/state"
	"github.com/MrSnakeDoc/snooze/internal/stories"
)

type credentialsForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Name     string
}

// Login authenticates against the story service and starts a session.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := credentialsForm{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		}
		if err := checkForm("login", form); err != nil {
			fail(w, r, d, nil, sectionAll, err)
			return
		}

		st := state.New(d.Stories)
		user, err := st.Login(r.Context(), form.Username, form.Password)
		if err != nil {
			fail(w, r, d, nil, sectionAll, err)
			return
		}
		startSession(w, r, d, user, "Welcome back, "+displayName(user)+"!")
	}
}

// Signup creates an account and starts a session.
func Signup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := credentialsForm{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
			Name:     strings.TrimSpace(r.PostFormValue("name")),
		}
		if err := checkForm("signup", form); err != nil {
			fail(w, r, d, nil, sectionAll, err)
			return
		}

		st := state.New(d.Stories)
		user, err := st.Signup(r.Context(), form.Username, form.Password, form.Name)
		if err != nil {
			fail(w, r, d, nil, sectionAll, err)
			return
		}
		startSession(w, r, d, user, "Welcome, "+displayName(user)+"!")
	}
}

// Logout forgets the session and returns to the anonymous front page.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.End(r.Context(), w, r); err != nil {
			d.Logger.Warn("failed to delete session", logger.Error(err))
		}
		redirect(w, r, sectionAll)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, d deps.Deps, user *stories.User, greeting string) {
	if err := d.Sessions.Start(r.Context(), w, user.Token(), user.Username); err != nil {
		d.Logger.Error("failed to start session", logger.String("username", user.Username), logger.Error(err))
		fail(w, r, d, nil, sectionAll, &domain.APIError{Op: "session", Kind: domain.ErrService, Err: err})
		return
	}
	d.Logger.Info("user signed in", logger.String("username", user.Username))
	setFlash(w, "info", greeting)
	redirect(w, r, sectionAll)
}

func displayName(u *stories.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
