package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/jikansync/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleAnime() domain.Anime {
	from := time.Date(2009, 4, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2010, 7, 4, 0, 0, 0, 0, time.UTC)
	return domain.Anime{
		MalID:        5114,
		Title:        "Fullmetal Alchemist: Brotherhood",
		TitleEnglish: "Fullmetal Alchemist: Brotherhood",
		Synopsis:     "After a horrific alchemy experiment...",
		Episodes:     64,
		Score:        9.1,
		ScoredBy:     2000000,
		Type:         "TV",
		Status:       "Finished Airing",
		AiredFrom:    &from,
		AiredTo:      &to,
		ImageURL:     "https://cdn.myanimelist.net/images/anime/1208/94745.jpg",
		Rating:       "R - 17+",
		Rank:         1,
		Popularity:   3,
		Genres: []domain.Genre{
			{MalGenreID: 1, Name: "Action", Type: "genre"},
			{MalGenreID: 2, Name: "Adventure", Type: "genre"},
			{MalGenreID: 38, Name: "Military", Type: "theme"},
		},
	}
}

func TestUpsertCreatesRecord(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)
	ctx := context.Background()

	stored, err := repo.Upsert(ctx, sampleAnime())
	require.NoError(t, err)

	assert.NotZero(t, stored.ID)
	assert.Equal(t, int64(5114), stored.MalID)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", stored.Title)
	assert.Equal(t, 64, stored.Episodes)
	require.NotNil(t, stored.AiredFrom)
	assert.Equal(t, 2009, stored.AiredFrom.Year())
	assert.False(t, stored.LastSyncedAt.IsZero())
	assert.Len(t, stored.Genres, 3)
}

func TestUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, sampleAnime())
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // RFC3339 second resolution

	second, err := repo.Upsert(ctx, sampleAnime())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one MAL id maps to one row")
	assert.True(t, second.LastSyncedAt.After(first.LastSyncedAt), "last_synced_at must advance")
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "created_at is immutable")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertReplacesScalarFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleAnime())
	require.NoError(t, err)

	refreshed := sampleAnime()
	refreshed.Score = 9.2
	refreshed.ScoredBy = 2100000
	refreshed.Status = "Finished Airing"
	refreshed.Genres = []domain.Genre{
		{MalGenreID: 1, Name: "Action", Type: "genre"},
		{MalGenreID: 27, Name: "Shounen", Type: "demographic"},
	}

	stored, err := repo.Upsert(ctx, refreshed)
	require.NoError(t, err)

	assert.Equal(t, 9.2, stored.Score)
	assert.Equal(t, 2100000, stored.ScoredBy)

	// Genre set is replaced, not appended.
	require.Len(t, stored.Genres, 2)
	assert.Equal(t, int64(1), stored.Genres[0].MalGenreID)
	assert.Equal(t, int64(27), stored.Genres[1].MalGenreID)
}

func TestGenreIdentityIsFirstWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleAnime())
	require.NoError(t, err)

	renamed := sampleAnime()
	renamed.Genres = []domain.Genre{{MalGenreID: 1, Name: "Renamed Action", Type: "theme"}}

	stored, err := repo.Upsert(ctx, renamed)
	require.NoError(t, err)

	require.Len(t, stored.Genres, 1)
	assert.Equal(t, "Action", stored.Genres[0].Name, "existing genre rows are never rewritten")
	assert.Equal(t, "genre", stored.Genres[0].Type)
}

func TestConcurrentUpsertsDedupeGenres(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)
	ctx := context.Background()

	// N records all referencing the same previously-unseen genre id.
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := sampleAnime()
			a.MalID = int64(1000 + i)
			a.Genres = []domain.Genre{{MalGenreID: 777, Name: "Isekai", Type: "theme"}}
			_, errs[i] = repo.Upsert(ctx, a)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "upsert %d failed", i)
	}

	var count int
	require.NoError(t, db.handler.QueryRow("SELECT COUNT(*) FROM genre WHERE mal_genre_id = 777").Scan(&count))
	assert.Equal(t, 1, count, "exactly one genre row for the shared id")
}

func TestGetByMalIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnimeRepo(zerolog.Nop(), db)

	_, err := repo.GetByMalID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
