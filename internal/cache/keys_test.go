package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/varoOP/jikansync/internal/domain"
)

func TestKeyBuildersAreDeterministic(t *testing.T) {
	assert.Equal(t, AnimeByIDKey(5114), AnimeByIDKey(5114))
	assert.Equal(t, SearchKey("naruto", 1), SearchKey("naruto", 1))
	assert.Equal(t, TopKey(domain.ListingTV, 2), TopKey(domain.ListingTV, 2))
	assert.Equal(t, SeasonalKey(domain.SeasonFall, 2023, 1), SeasonalKey(domain.SeasonFall, 2023, 1))
}

func TestKeyBuildersSeparateParameters(t *testing.T) {
	assert.NotEqual(t, SearchKey("naruto", 1), SearchKey("naruto", 2))
	assert.NotEqual(t, SearchKey("naruto", 1), SearchKey("bleach", 1))
	assert.NotEqual(t, TopKey(domain.ListingTV, 1), TopKey(domain.ListingMovie, 1))
	assert.NotEqual(t, SeasonalKey(domain.SeasonFall, 2023, 1), SeasonalKey(domain.SeasonFall, 2024, 1))
}

func TestSearchKeyEscapesSeparator(t *testing.T) {
	// A query containing the separator must not collide with a different
	// query/page split.
	assert.NotEqual(t, SearchKey("a:1", 2), SearchKey("a", 12))
	assert.Equal(t, "5114", AnimeByIDKey(5114))
}
