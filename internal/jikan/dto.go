package jikan

import "time"

// Response shapes for the Jikan v4 API. Only the fields the pipeline
// consumes are declared; everything else the provider sends is ignored,
// which also shields us from additive schema churn.

type animeResponse struct {
	Data *AnimeData `json:"data"`
}

type listResponse struct {
	Data       []AnimeData     `json:"data"`
	Pagination *PaginationData `json:"pagination"`
}

// AnimeData is one anime record as served by Jikan.
type AnimeData struct {
	MalID        int64       `json:"mal_id"`
	Title        string      `json:"title"`
	TitleEnglish string      `json:"title_english"`
	Synopsis     string      `json:"synopsis"`
	Episodes     int         `json:"episodes"`
	Score        float64     `json:"score"`
	ScoredBy     int         `json:"scored_by"`
	Type         string      `json:"type"`
	Status       string      `json:"status"`
	Rating       string      `json:"rating"`
	Rank         int         `json:"rank"`
	Popularity   int         `json:"popularity"`
	Aired        AiredData   `json:"aired"`
	Images       ImagesData  `json:"images"`
	Genres       []GenreData `json:"genres"`
	Themes       []GenreData `json:"themes"`
	Demographics []GenreData `json:"demographics"`
}

type AiredData struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

type ImagesData struct {
	JPG ImageSet `json:"jpg"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type GenreData struct {
	MalID int64  `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
}

type PaginationData struct {
	LastVisiblePage int             `json:"last_visible_page"`
	HasNextPage     bool            `json:"has_next_page"`
	CurrentPage     int             `json:"current_page"`
	Items           PaginationItems `json:"items"`
}

type PaginationItems struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
}
