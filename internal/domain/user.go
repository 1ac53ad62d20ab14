package domain

import "time"

// Profile is the account data returned by signup, login and the user
// lookup endpoint. Favorites and Stories are full story records.
type Profile struct {
	Username  string
	Name      string
	CreatedAt time.Time
	Favorites []Story
	Stories   []Story
}

// Session is a profile plus the token the service issued for it.
type Session struct {
	Profile Profile
	Token   string
}
