package cache

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/varoOP/jikansync/internal/domain"
)

// Dataset is a named cache partition. Each dataset has exactly one TTL
// policy; datasets never share one even when backed by the same store.
type Dataset string

const (
	DatasetAnimeByID Dataset = "anime-by-id"
	DatasetSearch    Dataset = "anime-search"
	DatasetTop       Dataset = "anime-top"
	DatasetSeasonal  Dataset = "anime-seasonal"
)

// Listing TTLs are fixed; the by-id TTL comes from config.
const (
	SearchTTL   = time.Hour
	TopTTL      = 6 * time.Hour
	SeasonalTTL = 12 * time.Hour
)

// Key builders. Pure functions: identical parameters always produce the
// same key. Free-text parameters are query-escaped so they cannot collide
// with the separator.

func AnimeByIDKey(malID int64) string {
	return strconv.FormatInt(malID, 10)
}

func SearchKey(query string, page int) string {
	return fmt.Sprintf("%s:%d", url.QueryEscape(query), page)
}

func TopKey(listing domain.ListingType, page int) string {
	return fmt.Sprintf("%s:%d", listing, page)
}

func SeasonalKey(season domain.Season, year, page int) string {
	return fmt.Sprintf("%s:%d:%d", season, year, page)
}
