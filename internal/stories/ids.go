package stories

import "github.com/thoas/go-funk"

func containsID(ids []string, id string) bool {
	return funk.ContainsString(ids, id)
}

// withoutID never returns nil, so an emptied list stays an empty list.
func withoutID(ids []string, id string) []string {
	out := funk.FilterString(ids, func(s string) bool { return s != id })
	if out == nil {
		return []string{}
	}
	return out
}

func prependID(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	return append(out, withoutID(ids, id)...)
}
