package validate

import "fmt"

// Text field length limits — single source of truth for backend and frontend.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxGenreLength       = 100
	MaxPersonNameLength  = 100
	MaxSubtitleTracks    = 20
	MaxChatMessageLength = 2000
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string       { return checkLen(s, MaxTitleLength, "title") }
func Description(s string) string { return checkLen(s, MaxDescriptionLength, "description") }
func Genre(s string) string       { return checkLen(s, MaxGenreLength, "genre") }
func PersonName(s string) string  { return checkLen(s, MaxPersonNameLength, "name") }
func ChatMessage(s string) string { return checkLen(s, MaxChatMessageLength, "message") }

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":       MaxTitleLength,
		"description": MaxDescriptionLength,
		"genre":       MaxGenreLength,
		"personName":  MaxPersonNameLength,
		"chatMessage": MaxChatMessageLength,
	}
}
