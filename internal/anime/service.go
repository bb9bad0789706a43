package anime

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/cache"
	"github.com/varoOP/jikansync/internal/domain"
	"github.com/varoOP/jikansync/internal/jikan"
)

// Service is the acquisition pipeline's public entry point. Each
// operation runs cache-check, provider call, persistence (by-id only)
// and cache write-back. Listing operations degrade to an empty page when
// the provider is unreachable; FetchByID keeps "not found" and
// "unavailable" distinct so callers can tell them apart.
type Service interface {
	// FetchByID returns the anime for a MAL id, syncing it into local
	// storage on a cache miss.
	FetchByID(ctx context.Context, malID int64) (*domain.Anime, error)

	// EnsureExists guarantees a local row exists for the MAL id and
	// returns its local id. The provider is consulted only when no local
	// row exists. Used by collaborators that need the id mapping, not
	// the payload.
	EnsureExists(ctx context.Context, malID int64) (int64, error)

	Search(ctx context.Context, query string, page int) (*domain.PagedAnime, error)
	Top(ctx context.Context, listing domain.ListingType, page int) (*domain.PagedAnime, error)
	Seasonal(ctx context.Context, season domain.Season, year, page int) (*domain.PagedAnime, error)
}

type service struct {
	log   zerolog.Logger
	jikan jikan.Service
	repo  domain.AnimeRepository
	cache *cache.Layer
}

// NewService wires the orchestrator.
func NewService(log zerolog.Logger, client jikan.Service, repo domain.AnimeRepository, cacheLayer *cache.Layer) Service {
	return &service{
		log:   log.With().Str("module", "anime").Logger(),
		jikan: client,
		repo:  repo,
		cache: cacheLayer,
	}
}

func (s *service) FetchByID(ctx context.Context, malID int64) (*domain.Anime, error) {
	if malID <= 0 {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "mal id must be positive, got %d", malID)
	}

	key := cache.AnimeByIDKey(malID)
	var cached domain.Anime
	if s.cache.Get(ctx, cache.DatasetAnimeByID, key, &cached) {
		s.log.Debug().Int64("mal_id", malID).Msg("cache hit")
		return &cached, nil
	}

	fetched, err := s.jikan.AnimeByID(ctx, malID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, *fetched)
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist anime")
	}
	s.log.Info().Int64("mal_id", malID).Int64("id", stored.ID).Msg("synced anime")

	s.cache.Put(ctx, cache.DatasetAnimeByID, key, stored)
	return stored, nil
}

func (s *service) EnsureExists(ctx context.Context, malID int64) (int64, error) {
	if malID <= 0 {
		return 0, errors.Wrapf(domain.ErrInvalidParams, "mal id must be positive, got %d", malID)
	}

	existing, err := s.repo.GetByMalID(ctx, malID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, errors.Wrap(err, "failed to look up anime")
	}

	stored, err := s.FetchByID(ctx, malID)
	if err != nil {
		return 0, err
	}

	if stored.ID == 0 {
		// Cache hits predating a wiped database carry no local id.
		fresh, err := s.repo.GetByMalID(ctx, malID)
		if err != nil {
			return 0, errors.Wrap(err, "failed to resolve local id")
		}
		return fresh.ID, nil
	}

	return stored.ID, nil
}

func (s *service) Search(ctx context.Context, query string, page int) (*domain.PagedAnime, error) {
	if query == "" {
		return nil, errors.Wrap(domain.ErrInvalidParams, "search query must not be empty")
	}
	if page < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "page must be >= 1, got %d", page)
	}

	return s.listing(ctx, cache.DatasetSearch, cache.SearchKey(query, page), page, func() (*domain.PagedAnime, error) {
		return s.jikan.Search(ctx, query, page)
	})
}

func (s *service) Top(ctx context.Context, listing domain.ListingType, page int) (*domain.PagedAnime, error) {
	if !listing.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "invalid listing type %q", listing)
	}
	if page < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "page must be >= 1, got %d", page)
	}

	return s.listing(ctx, cache.DatasetTop, cache.TopKey(listing, page), page, func() (*domain.PagedAnime, error) {
		return s.jikan.Top(ctx, listing, page)
	})
}

func (s *service) Seasonal(ctx context.Context, season domain.Season, year, page int) (*domain.PagedAnime, error) {
	if !season.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "invalid season %q", season)
	}
	if year < 1917 || year > time.Now().Year()+2 {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "invalid year %d", year)
	}
	if page < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParams, "page must be >= 1, got %d", page)
	}

	return s.listing(ctx, cache.DatasetSeasonal, cache.SeasonalKey(season, year, page), page, func() (*domain.PagedAnime, error) {
		return s.jikan.Seasonal(ctx, season, year, page)
	})
}

// listing is the shared flow for the three paged queries: cache-check,
// provider fetch, cache write-back. Provider unavailability degrades to
// an empty page; degraded or empty pages are never cached.
func (s *service) listing(ctx context.Context, dataset cache.Dataset, key string, page int, fetch func() (*domain.PagedAnime, error)) (*domain.PagedAnime, error) {
	var cached domain.PagedAnime
	if s.cache.Get(ctx, dataset, key, &cached) {
		s.log.Debug().Str("dataset", string(dataset)).Str("key", key).Msg("cache hit")
		return &cached, nil
	}

	result, err := fetch()
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			s.log.Warn().Str("dataset", string(dataset)).Str("key", key).Msg("provider unavailable, returning empty page")
			empty := domain.EmptyPage(page)
			return &empty, nil
		}
		return nil, err
	}

	if len(result.Data) > 0 {
		s.cache.Put(ctx, dataset, key, result)
	}

	return result, nil
}
