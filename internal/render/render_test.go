package render

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/index"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/stories"
)

var (
	storyA = domain.Story{StoryID: "a1", Title: "Alpha", Author: "Ann", URL: "https://alpha.example/post?id=1", Username: "bob"}
	storyB = domain.Story{StoryID: "b2", Title: "Beta", Author: "Ben", URL: "http://beta.example:8080/", Username: "alice"}
	storyC = domain.Story{StoryID: "c3", Title: "Gamma <script>", Author: "Cy", URL: "not a url", Username: "carol"}
)

type profileAPI struct {
	profile domain.Profile
	all     []domain.Story
}

func (p profileAPI) GetStories(context.Context) ([]domain.Story, error) { return p.all, nil }
func (p profileAPI) CreateStory(context.Context, string, domain.NewStory) (domain.Story, error) {
	return domain.Story{}, errors.New("unused")
}
func (p profileAPI) DeleteStory(context.Context, string, string) error { return errors.New("unused") }
func (p profileAPI) Signup(context.Context, string, string, string) (domain.Session, error) {
	return domain.Session{}, errors.New("unused")
}
func (p profileAPI) Login(context.Context, string, string) (domain.Session, error) {
	return domain.Session{Profile: p.profile, Token: "tok"}, nil
}
func (p profileAPI) GetUser(context.Context, string, string) (domain.Profile, error) {
	return p.profile, nil
}
func (p profileAPI) AddFavorite(context.Context, string, string, string) error    { return nil }
func (p profileAPI) RemoveFavorite(context.Context, string, string, string) error { return nil }

func viewer(t *testing.T, favorites, own []domain.Story) (*stories.User, *stories.Service, *index.Catalog) {
	t.Helper()
	api := profileAPI{
		profile: domain.Profile{Username: "alice", Name: "Alice", Favorites: favorites, Stories: own},
		all:     []domain.Story{storyA, storyB, storyC},
	}
	svc := stories.NewService(api, logger.Nop())
	catalog := index.NewCatalog()
	u, err := svc.Login(context.Background(), catalog, "alice", "pw")
	require.NoError(t, err)
	return u, svc, catalog
}

func parse(t *testing.T, fragment template.HTML) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(string(fragment)))
	require.NoError(t, err)
	return doc
}

func find(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.Contains(" "+attr(n, "class")+" ", " "+class+" ")
	}
}

func text(n *html.Node) string {
	var b strings.Builder
	for _, t := range find(n, func(n *html.Node) bool { return n.Type == html.TextNode }) {
		b.WriteString(t.Data)
	}
	return strings.TrimSpace(b.String())
}

func TestStoryAnonymous(t *testing.T) {
	out, err := Story(storyA, nil, false)
	require.NoError(t, err)
	doc := parse(t, out)

	li := find(doc, byTag("li"))
	require.Len(t, li, 1)
	assert.Equal(t, "a1", attr(li[0], "id"))

	links := find(doc, byClass("story-link"))
	require.Len(t, links, 1)
	assert.Equal(t, "https://alpha.example/post?id=1", attr(links[0], "href"))
	assert.Equal(t, "a_blank", attr(links[0], "target"))
	assert.Equal(t, "Alpha", text(links[0]))

	assert.Equal(t, "(alpha.example)", text(find(doc, byClass("story-hostname"))[0]))
	assert.Equal(t, "by Ann", text(find(doc, byClass("story-author"))[0]))
	assert.Equal(t, "posted by bob", text(find(doc, byClass("story-user"))[0]))

	assert.Empty(t, find(doc, byClass("star")), "anonymous viewers get no star")
	assert.Empty(t, find(doc, byClass("trash-can")))
}

func TestStoryStarReflectsFavorite(t *testing.T) {
	u, _, _ := viewer(t, []domain.Story{storyA}, nil)

	tests := []struct {
		story domain.Story
		want  string
	}{
		{storyA, "fas fa-star"},
		{storyB, "far fa-star"},
	}
	for _, tt := range tests {
		t.Run(tt.story.StoryID, func(t *testing.T) {
			out, err := Story(tt.story, u, false)
			require.NoError(t, err)

			stars := find(parse(t, out), byClass("fa-star"))
			require.Len(t, stars, 1)
			assert.Equal(t, tt.want, attr(stars[0], "class"))
		})
	}
}

func TestStoryDeleteButton(t *testing.T) {
	out, err := Story(storyB, nil, true)
	require.NoError(t, err)

	forms := find(parse(t, out), byClass("trash-can"))
	require.Len(t, forms, 1)
	assert.Equal(t, "/stories/b2/delete", attr(forms[0], "action"))
	assert.Equal(t, "(beta.example:8080)", text(find(parse(t, out), byClass("story-hostname"))[0]))
}

func TestStoryInvalidURLOmitsHostname(t *testing.T) {
	out, err := Story(storyC, nil, false)
	require.NoError(t, err)
	doc := parse(t, out)

	assert.Empty(t, find(doc, byClass("story-hostname")))
	assert.Equal(t, "Gamma <script>", text(find(doc, byClass("story-link"))[0]))
	assert.NotContains(t, string(out), "<script>", "titles are escaped")
}

func TestAllStoriesOrder(t *testing.T) {
	_, svc, catalog := viewer(t, nil, nil)
	list, err := svc.FetchAll(context.Background(), catalog)
	require.NoError(t, err)

	out, err := AllStories(list, nil)
	require.NoError(t, err)

	var got []string
	for _, li := range find(parse(t, out), byTag("li")) {
		got = append(got, attr(li, "id"))
	}
	assert.Equal(t, []string{"a1", "b2", "c3"}, got)
}

func TestEmptyMessages(t *testing.T) {
	u, _, _ := viewer(t, nil, nil)

	out, err := OwnStories(u)
	require.NoError(t, err)
	assert.Equal(t, EmptyOwnStories, text(find(parse(t, out), byTag("h5"))[0]))

	out, err = Favorites(u)
	require.NoError(t, err)
	assert.Equal(t, EmptyFavorites, text(find(parse(t, out), byTag("h5"))[0]))

	_, err = Favorites(nil)
	assert.Error(t, err)
}

func TestFavoritesAndOwnStories(t *testing.T) {
	u, _, _ := viewer(t, []domain.Story{storyB, storyA}, []domain.Story{storyB})

	out, err := Favorites(u)
	require.NoError(t, err)
	doc := parse(t, out)
	items := find(doc, byTag("li"))
	require.Len(t, items, 2)
	assert.Equal(t, "b2", attr(items[0], "id"))
	assert.Equal(t, "a1", attr(items[1], "id"))
	assert.Empty(t, find(doc, byTag("h5")))

	out, err = OwnStories(u)
	require.NoError(t, err)
	assert.Len(t, find(parse(t, out), byClass("trash-can")), 1)
}

func TestPageNav(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page(&buf, PageData{Body: "<ol></ol>", Flash: &Flash{Kind: "error", Message: "Invalid credentials"}}))
	doc := parse(t, template.HTML(buf.String()))

	assert.Len(t, find(doc, func(n *html.Node) bool { return attr(n, "id") == "login-form" }), 1)
	assert.Len(t, find(doc, func(n *html.Node) bool { return attr(n, "id") == "signup-form" }), 1)
	assert.Empty(t, find(doc, func(n *html.Node) bool { return attr(n, "id") == "nav-logout" }))
	assert.Equal(t, "Invalid credentials", text(find(doc, byClass("flash"))[0]))

	u, _, _ := viewer(t, nil, nil)
	buf.Reset()
	require.NoError(t, Page(&buf, PageData{User: u}))
	doc = parse(t, template.HTML(buf.String()))

	assert.Equal(t, "alice", text(find(doc, func(n *html.Node) bool { return attr(n, "id") == "nav-user-profile" })[0]))
	assert.Len(t, find(doc, func(n *html.Node) bool { return attr(n, "id") == "story-form" }), 1)
	assert.Empty(t, find(doc, func(n *html.Node) bool { return attr(n, "id") == "login-form" }))
	assert.Empty(t, find(doc, byClass("flash")))
}
