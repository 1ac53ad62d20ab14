// Package render turns stories and the signed-in user into HTML. Nothing
// here touches the network or mutates state; output order always follows
// the backing sequence.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/stories"
)

const (
	EmptyOwnStories = "No stories added by user yet, please add!"
	EmptyFavorites  = "No favorites added yet, please add!"
)

//go:embed templates/*.html
var files embed.FS

var tmpl = template.Must(template.ParseFS(files, "templates/*.html"))

type storyView struct {
	ID         string
	Title      string
	URL        string
	Host       string
	Author     string
	Username   string
	ShowDelete bool
	ShowStar   bool
	Favorite   bool
	Return     string
}

type listView struct {
	ID    string
	Items []storyView
	Empty string
}

// Story renders a single story as an <li>. The star is shown only when
// viewer is non-nil; the delete button only when showDelete is set. A
// story whose URL has no host is rendered without the hostname.
func Story(story domain.Story, viewer *stories.User, showDelete bool) (template.HTML, error) {
	return execute("story", newStoryView(story, viewer, showDelete, "/"))
}

// AllStories renders the global list, in list order.
func AllStories(list *stories.StoryList, viewer *stories.User) (template.HTML, error) {
	return renderList("all-stories-list", list.Stories(), viewer, false, "", "/")
}

// OwnStories renders the viewer's posted stories with delete buttons.
func OwnStories(viewer *stories.User) (template.HTML, error) {
	if viewer == nil {
		return "", fmt.Errorf("render: own stories need a signed-in user")
	}
	return renderList("my-stories", viewer.OwnStories(), viewer, true, EmptyOwnStories, "/my-stories")
}

// Favorites renders the viewer's favorites in favorite order.
func Favorites(viewer *stories.User) (template.HTML, error) {
	if viewer == nil {
		return "", fmt.Errorf("render: favorites need a signed-in user")
	}
	return renderList("favorited-stories", viewer.Favorites(), viewer, false, EmptyFavorites, "/favorites")
}

func renderList(id string, items []domain.Story, viewer *stories.User, showDelete bool, empty, ret string) (template.HTML, error) {
	view := listView{ID: id, Items: make([]storyView, 0, len(items)), Empty: empty}
	for _, s := range items {
		view.Items = append(view.Items, newStoryView(s, viewer, showDelete, ret))
	}
	return execute("list", view)
}

func newStoryView(s domain.Story, viewer *stories.User, showDelete bool, ret string) storyView {
	host, err := s.HostName()
	if err != nil {
		host = ""
	}
	return storyView{
		ID:         s.StoryID,
		Title:      s.Title,
		URL:        s.URL,
		Host:       host,
		Author:     s.Author,
		Username:   s.Username,
		ShowDelete: showDelete,
		ShowStar:   viewer != nil,
		Favorite:   viewer != nil && viewer.IsFavorite(s.StoryID),
		Return:     ret,
	}
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	// #nosec G203 -- produced by html/template, already escaped
	return template.HTML(buf.String()), nil
}

// Flash is a one-shot message shown above the list.
type Flash struct {
	Kind    string // "error" or "info"
	Message string
}

// PageData is everything the full layout needs.
type PageData struct {
	Title string
	User  *stories.User
	Flash *Flash
	Body  template.HTML
}

// Page writes the full HTML document.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Hack or Snooze"
	}
	if err := tmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
