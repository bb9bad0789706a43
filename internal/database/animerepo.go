package database

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/domain"
)

// AnimeRepo implements domain.AnimeRepository on sqlite.
type AnimeRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewAnimeRepo creates a new anime repository
func NewAnimeRepo(log zerolog.Logger, db *DB) domain.AnimeRepository {
	return &AnimeRepo{
		log: log.With().Str("repo", "anime").Logger(),
		db:  db,
	}
}

// Upsert inserts a freshly synced record or fully replaces the mutable
// fields of the existing row with the same mal_id. Genre rows are
// created on first sight via insert-or-fetch-on-conflict, so two
// concurrent upserts referencing the same new genre cannot both insert;
// genre name and type are first-write-wins. The whole reconciliation is
// one transaction.
func (r *AnimeRepo) Upsert(ctx context.Context, anime domain.Anime) (*domain.Anime, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)

	queryBuilder := r.db.squirrel.
		Insert("anime").
		Columns("mal_id", "title", "title_english", "synopsis", "episodes", "score", "scored_by",
			"type", "status", "aired_from", "aired_to", "image_url", "rating", "anime_rank",
			"popularity", "created_at", "updated_at", "last_synced_at").
		Values(anime.MalID, anime.Title, anime.TitleEnglish, anime.Synopsis, anime.Episodes,
			anime.Score, anime.ScoredBy, anime.Type, anime.Status, formatDate(anime.AiredFrom),
			formatDate(anime.AiredTo), anime.ImageURL, anime.Rating, anime.Rank,
			anime.Popularity, now, now, now).
		Suffix(`ON CONFLICT (mal_id) DO UPDATE SET
			title = excluded.title,
			title_english = excluded.title_english,
			synopsis = excluded.synopsis,
			episodes = excluded.episodes,
			score = excluded.score,
			scored_by = excluded.scored_by,
			type = excluded.type,
			status = excluded.status,
			aired_from = excluded.aired_from,
			aired_to = excluded.aired_to,
			image_url = excluded.image_url,
			rating = excluded.rating,
			anime_rank = excluded.anime_rank,
			popularity = excluded.popularity,
			updated_at = excluded.updated_at,
			last_synced_at = excluded.last_synced_at`)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Upsert")

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}

	var animeID int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM anime WHERE mal_id = ?", anime.MalID).Scan(&animeID); err != nil {
		return nil, errors.Wrap(err, "error reading anime id")
	}

	genreIDs, err := r.ensureGenres(ctx, tx, anime.Genres)
	if err != nil {
		return nil, err
	}

	// Union-replace the genre set
	if _, err := tx.ExecContext(ctx, "DELETE FROM anime_genre WHERE anime_id = ?", animeID); err != nil {
		return nil, errors.Wrap(err, "error clearing genre links")
	}
	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO anime_genre (anime_id, genre_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			animeID, genreID); err != nil {
			return nil, errors.Wrap(err, "error linking genre")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "error committing upsert")
	}

	return r.GetByMalID(ctx, anime.MalID)
}

// ensureGenres resolves each genre to a local id, inserting unseen ones.
// ON CONFLICT DO NOTHING followed by a select keeps this race-safe under
// concurrent upserts and never rewrites an existing genre.
func (r *AnimeRepo) ensureGenres(ctx context.Context, tx *sql.Tx, genres []domain.Genre) ([]int64, error) {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO genre (mal_genre_id, name, type) VALUES (?, ?, ?) ON CONFLICT (mal_genre_id) DO NOTHING",
			g.MalGenreID, g.Name, g.Type); err != nil {
			return nil, errors.Wrap(err, "error inserting genre")
		}

		var id int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM genre WHERE mal_genre_id = ?", g.MalGenreID).Scan(&id); err != nil {
			return nil, errors.Wrap(err, "error reading genre id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetByMalID returns the stored record with genres attached, or
// domain.ErrNotFound.
func (r *AnimeRepo) GetByMalID(ctx context.Context, malID int64) (*domain.Anime, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "mal_id", "title", "title_english", "synopsis", "episodes", "score", "scored_by",
			"type", "status", "aired_from", "aired_to", "image_url", "rating", "anime_rank",
			"popularity", "created_at", "updated_at", "last_synced_at").
		From("anime").
		Where(sq.Eq{"mal_id": malID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("GetByMalID")

	row := r.db.handler.QueryRowContext(ctx, query, args...)
	anime, err := scanAnime(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "error scanning anime")
	}

	genres, err := r.genresFor(ctx, anime.ID)
	if err != nil {
		return nil, err
	}
	anime.Genres = genres

	return anime, nil
}

// GetAll returns every stored record with genres attached.
func (r *AnimeRepo) GetAll(ctx context.Context) ([]domain.Anime, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "mal_id", "title", "title_english", "synopsis", "episodes", "score", "scored_by",
			"type", "status", "aired_from", "aired_to", "image_url", "rating", "anime_rank",
			"popularity", "created_at", "updated_at", "last_synced_at").
		From("anime").
		OrderBy("mal_id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var out []domain.Anime
	for rows.Next() {
		anime, err := scanAnime(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning anime")
		}
		out = append(out, *anime)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	for i := range out {
		genres, err := r.genresFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Genres = genres
	}

	return out, nil
}

func (r *AnimeRepo) genresFor(ctx context.Context, animeID int64) ([]domain.Genre, error) {
	queryBuilder := r.db.squirrel.
		Select("g.id", "g.mal_genre_id", "g.name", "g.type").
		From("genre g").
		Join("anime_genre ag ON ag.genre_id = g.id").
		Where(sq.Eq{"ag.anime_id": animeID}).
		OrderBy("g.mal_genre_id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		var g domain.Genre
		var gType sql.NullString
		if err := rows.Scan(&g.ID, &g.MalGenreID, &g.Name, &gType); err != nil {
			return nil, errors.Wrap(err, "error scanning genre")
		}
		g.Type = gType.String
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return genres, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnime(row rowScanner) (*domain.Anime, error) {
	var (
		a                                  domain.Anime
		titleEnglish, synopsis             sql.NullString
		animeType, status, rating, img     sql.NullString
		airedFrom, airedTo                 sql.NullString
		episodes, scoredBy, rank, pop      sql.NullInt64
		score                              sql.NullFloat64
		createdAt, updatedAt, lastSyncedAt string
	)

	if err := row.Scan(&a.ID, &a.MalID, &a.Title, &titleEnglish, &synopsis, &episodes, &score,
		&scoredBy, &animeType, &status, &airedFrom, &airedTo, &img, &rating, &rank, &pop,
		&createdAt, &updatedAt, &lastSyncedAt); err != nil {
		return nil, err
	}

	a.TitleEnglish = titleEnglish.String
	a.Synopsis = synopsis.String
	a.Episodes = int(episodes.Int64)
	a.Score = score.Float64
	a.ScoredBy = int(scoredBy.Int64)
	a.Type = animeType.String
	a.Status = status.String
	a.Rating = rating.String
	a.Rank = int(rank.Int64)
	a.Popularity = int(pop.Int64)
	a.ImageURL = img.String
	a.AiredFrom = parseDate(airedFrom)
	a.AiredTo = parseDate(airedTo)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	a.LastSyncedAt = parseTime(lastSyncedAt)

	return &a, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
