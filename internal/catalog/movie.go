package catalog

type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Language    string   `json:"language"`
	Subtitles   []string `json:"subtitles"`
	CoverURL    string   `json:"coverUrl"`
	VideoURL    string   `json:"videoUrl"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Producers   []string `json:"producers,omitempty"`
	IsTrending  bool     `json:"isTrending,omitempty"`
	IsNew       bool     `json:"isNew,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

// Draft is a movie without an id; the catalog assigns one on publish.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Language    string   `json:"language"`
	Subtitles   []string `json:"subtitles"`
	CoverURL    string   `json:"coverUrl"`
	VideoURL    string   `json:"videoUrl"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Producers   []string `json:"producers,omitempty"`
	IsTrending  bool     `json:"isTrending,omitempty"`
	IsNew       bool     `json:"isNew,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

func (d Draft) complete() bool {
	return d.Title != "" && d.CoverURL != "" && d.VideoURL != ""
}

func (d Draft) movie(id string) Movie {
	return Movie{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Genre:       d.Genre,
		Language:    d.Language,
		Subtitles:   d.Subtitles,
		CoverURL:    d.CoverURL,
		VideoURL:    d.VideoURL,
		ReleaseDate: d.ReleaseDate,
		Directors:   d.Directors,
		Producers:   d.Producers,
		IsTrending:  d.IsTrending,
		IsNew:       d.IsNew,
		Rating:      d.Rating,
	}
}
