package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/jikansync/internal/domain"
	"gopkg.in/yaml.v3"
)

type stubRepo struct {
	anime []domain.Anime
}

func (r *stubRepo) Upsert(ctx context.Context, anime domain.Anime) (*domain.Anime, error) {
	return &anime, nil
}

func (r *stubRepo) GetByMalID(ctx context.Context, malID int64) (*domain.Anime, error) {
	return nil, domain.ErrNotFound
}

func (r *stubRepo) GetAll(ctx context.Context) ([]domain.Anime, error) {
	return r.anime, nil
}

func TestSnapshotYAML(t *testing.T) {
	repo := &stubRepo{anime: []domain.Anime{
		{MalID: 1, Title: "Cowboy Bebop"},
		{MalID: 5114, Title: "Fullmetal Alchemist: Brotherhood"},
	}}
	svc := NewService(zerolog.Nop(), repo)

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	count, err := svc.Snapshot(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, yaml.Unmarshal(body, &out))
	assert.Len(t, out, 2)
}

func TestSnapshotJSON(t *testing.T) {
	repo := &stubRepo{anime: []domain.Anime{{MalID: 20, Title: "Naruto"}}}
	svc := NewService(zerolog.Nop(), repo)

	path := filepath.Join(t.TempDir(), "out", "snapshot.json")
	count, err := svc.Snapshot(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = os.Stat(path)
	assert.NoError(t, err, "parent directories are created")
}

func TestSnapshotUnsupportedFormat(t *testing.T) {
	svc := NewService(zerolog.Nop(), &stubRepo{})

	_, err := svc.Snapshot(context.Background(), filepath.Join(t.TempDir(), "snapshot.xml"))
	assert.Error(t, err)
}
