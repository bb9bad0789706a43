package jikan

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/breaker"
	"github.com/varoOP/jikansync/internal/domain"
	"github.com/varoOP/jikansync/internal/ratelimit"
)

const pageSize = 25

// Operation classes. Each has its own circuit breaker, shared across all
// callers of that operation.
const (
	opAnimeByID = "anime-by-id"
	opSearch    = "anime-search"
	opTop       = "anime-top"
	opSeasonal  = "anime-seasonal"
)

// Service is the resilient Jikan client. Every call rate-limits, passes
// through the operation's circuit breaker and retries transient failures
// with exponential backoff. Callers see domain values and the sentinel
// errors domain.ErrNotFound / domain.ErrProviderUnavailable, never raw
// transport errors.
type Service interface {
	AnimeByID(ctx context.Context, malID int64) (*domain.Anime, error)
	Search(ctx context.Context, query string, page int) (*domain.PagedAnime, error)
	Top(ctx context.Context, listing domain.ListingType, page int) (*domain.PagedAnime, error)
	Seasonal(ctx context.Context, season domain.Season, year, page int) (*domain.PagedAnime, error)

	// Breaker exposes the breaker for an operation class so callers and
	// tests can inspect or force circuit state.
	Breaker(operation string) *breaker.Breaker
}

type service struct {
	log      zerolog.Logger
	baseURL  string
	client   *http.Client
	limiter  *ratelimit.Limiter
	attempts int
	backoff  time.Duration
	breakers map[string]*breaker.Breaker
	now      func() time.Time
}

// NewService creates a Jikan client from config. The limiter is owned by
// the caller so it can be shared or replaced in tests.
func NewService(log zerolog.Logger, cfg *domain.Config, limiter *ratelimit.Limiter) Service {
	slog := log.With().Str("module", "jikan").Logger()

	settings := breaker.Settings{
		FailureThreshold: cfg.BreakerFailureThreshold,
		MinSamples:       cfg.BreakerMinSamples,
		Cooldown:         cfg.BreakerCooldown,
		Probes:           cfg.BreakerProbes,
	}

	breakers := make(map[string]*breaker.Breaker)
	for _, op := range []string{opAnimeByID, opSearch, opTop, opSeasonal} {
		breakers[op] = breaker.New(slog, op, settings)
	}

	return &service{
		log:     slog,
		baseURL: cfg.JikanBaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: cfg.RequestTimeout}).DialContext,
				TLSHandshakeTimeout:   cfg.RequestTimeout,
				ResponseHeaderTimeout: cfg.RequestTimeout,
			},
		},
		limiter:  limiter,
		attempts: cfg.RetryAttempts,
		backoff:  500 * time.Millisecond,
		breakers: breakers,
		now:      time.Now,
	}
}

func (s *service) Breaker(operation string) *breaker.Breaker {
	return s.breakers[operation]
}

func (s *service) AnimeByID(ctx context.Context, malID int64) (*domain.Anime, error) {
	s.log.Debug().Int64("mal_id", malID).Msg("fetching anime by id")

	var resp animeResponse
	if err := s.get(ctx, opAnimeByID, fmt.Sprintf("/anime/%d", malID), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, domain.ErrNotFound
	}

	anime := toDomain(*resp.Data, s.now())
	return &anime, nil
}

func (s *service) Search(ctx context.Context, query string, page int) (*domain.PagedAnime, error) {
	s.log.Debug().Str("query", query).Int("page", page).Msg("searching anime")

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))

	var resp listResponse
	if err := s.get(ctx, opSearch, "/anime", params, &resp); err != nil {
		return nil, err
	}

	result := toPage(resp, page, s.now())
	return &result, nil
}

func (s *service) Top(ctx context.Context, listing domain.ListingType, page int) (*domain.PagedAnime, error) {
	s.log.Debug().Str("type", string(listing)).Int("page", page).Msg("fetching top anime")

	params := url.Values{}
	if listing != "" {
		params.Set("type", string(listing))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))

	var resp listResponse
	if err := s.get(ctx, opTop, "/top/anime", params, &resp); err != nil {
		return nil, err
	}

	result := toPage(resp, page, s.now())
	return &result, nil
}

func (s *service) Seasonal(ctx context.Context, season domain.Season, year, page int) (*domain.PagedAnime, error) {
	s.log.Debug().Str("season", string(season)).Int("year", year).Int("page", page).Msg("fetching seasonal anime")

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp listResponse
	if err := s.get(ctx, opSeasonal, fmt.Sprintf("/seasons/%d/%s", year, season), params, &resp); err != nil {
		return nil, err
	}

	result := toPage(resp, page, s.now())
	return &result, nil
}

// get performs one logical provider call: breaker gate, limiter acquire,
// bounded retries on transient failures. Outcomes are recorded on the
// operation's breaker; an open circuit or exhausted retries surface as
// domain.ErrProviderUnavailable.
func (s *service) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	br := s.breakers[operation]

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.backoffDelay(attempt)); err != nil {
				return errors.Wrap(domain.ErrProviderUnavailable, err.Error())
			}
		}

		if !br.Allow() {
			s.log.Warn().Str("operation", operation).Msg("circuit open, short-circuiting")
			return domain.ErrProviderUnavailable
		}

		if err := s.limiter.Acquire(ctx); err != nil {
			// The breaker admitted this call; release the slot or a
			// HalfOpen probe would stay occupied forever.
			br.Cancel()
			return errors.Wrap(domain.ErrProviderUnavailable, err.Error())
		}

		retryable, err := s.attempt(ctx, path, params, out)
		if err == nil {
			br.Success()
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			// The provider answered; a missing record is not a fault.
			br.Success()
			return err
		}

		br.Failure()
		lastErr = err
		if !retryable {
			break
		}

		s.log.Warn().Err(err).Str("operation", operation).Int("attempt", attempt+1).Msg("provider call failed")
	}

	s.log.Error().Err(lastErr).Str("operation", operation).Msg("provider call exhausted retries")
	if lastErr == nil {
		return domain.ErrProviderUnavailable
	}
	return errors.Wrap(domain.ErrProviderUnavailable, lastErr.Error())
}

// attempt issues a single HTTP request. The bool reports whether the
// failure is transient and worth retrying.
func (s *service) attempt(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to build request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		// Timeouts, connection resets, DNS failures.
		return true, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return false, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return true, errors.Errorf("provider returned status %d", resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return false, errors.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, errors.Wrap(err, "failed to read response body")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, errors.Wrap(err, "failed to unmarshal response")
	}

	return false, nil
}

// backoffDelay is exponential with jitter: base*2^(attempt-1) plus up to
// 50% random spread, capped at 5s.
func (s *service) backoffDelay(attempt int) time.Duration {
	d := s.backoff << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}

func (s *service) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
