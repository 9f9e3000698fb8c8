package catalog

import "strings"

// Feed projections for the home screen. These are pure so handlers can apply
// them to an already-loaded catalog without re-reading the store.

// Search matches the query against title and genre, case-insensitively.
func Search(movies []Movie, query string) []Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return movies
	}
	var out []Movie
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.Genre), q) {
			out = append(out, m)
		}
	}
	return out
}

func Trending(movies []Movie) []Movie {
	var out []Movie
	for _, m := range movies {
		if m.IsTrending {
			out = append(out, m)
		}
	}
	return out
}

// Genres lists distinct genres in order of first appearance.
func Genres(movies []Movie) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range movies {
		if m.Genre == "" || seen[m.Genre] {
			continue
		}
		seen[m.Genre] = true
		out = append(out, m.Genre)
	}
	return out
}
