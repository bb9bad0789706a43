package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/domain"
	"gopkg.in/yaml.v3"
)

// Service dumps the synced anime table to a snapshot file. The format is
// picked from the file extension: .yaml/.yml or .json.
type Service interface {
	Snapshot(ctx context.Context, path string) (int, error)
}

type service struct {
	log  zerolog.Logger
	repo domain.AnimeRepository
}

func NewService(log zerolog.Logger, repo domain.AnimeRepository) Service {
	return &service{
		log:  log.With().Str("module", "export").Logger(),
		repo: repo,
	}
}

// Snapshot writes every stored record to path and returns the record
// count.
func (s *service) Snapshot(ctx context.Context, path string) (int, error) {
	anime, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load anime")
	}

	var body []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		body, err = yaml.Marshal(anime)
	case ".json":
		body, err = json.MarshalIndent(anime, "", "   ")
	default:
		return 0, errors.Errorf("unsupported snapshot format: %s", filepath.Ext(path))
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal snapshot")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", path)
	}

	s.log.Info().Str("path", path).Int("count", len(anime)).Msg("wrote snapshot")
	return len(anime), nil
}
