// Package languages holds the fixed set of interface locales a profile can
// select. The codes are the app's own, not BCP 47 ("ua" for Ukrainian is
// historical and kept for stored-profile compatibility).
package languages

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

const Default = "ru"

var uiLanguages = []Language{
	{Code: "ru", Name: "Русский"},
	{Code: "ua", Name: "Українська"},
	{Code: "en", Name: "English"},
	{Code: "be", Name: "Беларуская"},
	{Code: "kk", Name: "Қазақша"},
}

func Name(code string) string {
	for _, l := range uiLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return ""
}

func IsSupported(code string) bool {
	return Name(code) != ""
}

// All returns the selectable languages in display order.
func All() []Language {
	out := make([]Language, len(uiLanguages))
	copy(out, uiLanguages)
	return out
}
