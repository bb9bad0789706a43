package domain

import "time"

// Anime stores metadata synced from the Jikan API (MyAnimeList).
// MalID is the dedup key: a given MAL id maps to exactly one local row.
type Anime struct {
	ID           int64      `json:"id"`
	MalID        int64      `json:"malId"`
	Title        string     `json:"title"`
	TitleEnglish string     `json:"enTitle,omitempty"`
	Synopsis     string     `json:"synopsis,omitempty"`
	Episodes     int        `json:"episodes,omitempty"`
	Score        float64    `json:"score,omitempty"`
	ScoredBy     int        `json:"scoredBy,omitempty"`
	Type         string     `json:"type,omitempty"`
	Status       string     `json:"status,omitempty"`
	AiredFrom    *time.Time `json:"airedFrom,omitempty"`
	AiredTo      *time.Time `json:"airedTo,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	Rating       string     `json:"rating,omitempty"`
	Rank         int        `json:"rank,omitempty"`
	Popularity   int        `json:"popularity,omitempty"`
	Genres       []Genre    `json:"genres,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
	LastSyncedAt time.Time  `json:"lastSyncedAt,omitempty"`
}

// Genre is a MAL genre, theme or demographic. Name and Type are
// first-write-wins: once a mal_genre_id exists locally it is only
// ever attached, never rewritten.
type Genre struct {
	ID         int64  `json:"id"`
	MalGenreID int64  `json:"malGenreId"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
}

// Pagination describes the page position of a listing result. Derived
// from Jikan's pagination block; when the provider omits it the zero
// page is a single page with no successor.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	TotalItems  int  `json:"totalItems"`
}

// PagedAnime is one page of a listing query (search, top, seasonal).
type PagedAnime struct {
	Data       []Anime    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// EmptyPage is the degraded listing result returned when the provider
// is unreachable or returned nothing usable.
func EmptyPage(page int) PagedAnime {
	return PagedAnime{
		Data: []Anime{},
		Pagination: Pagination{
			CurrentPage: page,
			LastPage:    1,
			HasNextPage: false,
		},
	}
}

// ListingType is the Jikan top-listing filter.
type ListingType string

const (
	ListingTV      ListingType = "tv"
	ListingMovie   ListingType = "movie"
	ListingOVA     ListingType = "ova"
	ListingSpecial ListingType = "special"
	ListingONA     ListingType = "ona"
	ListingMusic   ListingType = "music"
)

// Valid reports whether t is a listing type Jikan accepts. The empty
// type is allowed and means "all".
func (t ListingType) Valid() bool {
	switch t {
	case "", ListingTV, ListingMovie, ListingOVA, ListingSpecial, ListingONA, ListingMusic:
		return true
	}
	return false
}

// Season is a MAL airing season.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

func (s Season) Valid() bool {
	switch s {
	case SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall:
		return true
	}
	return false
}
