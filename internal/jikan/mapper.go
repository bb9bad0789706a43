package jikan

import (
	"time"

	"github.com/varoOP/jikansync/internal/domain"
)

// toDomain maps a Jikan record onto the domain model. Genres, themes and
// demographics all land in the genre set; the Type field keeps them apart.
func toDomain(data AnimeData, now time.Time) domain.Anime {
	a := domain.Anime{
		MalID:        data.MalID,
		Title:        data.Title,
		TitleEnglish: data.TitleEnglish,
		Synopsis:     data.Synopsis,
		Episodes:     data.Episodes,
		Score:        data.Score,
		ScoredBy:     data.ScoredBy,
		Type:         data.Type,
		Status:       data.Status,
		Rating:       data.Rating,
		Rank:         data.Rank,
		Popularity:   data.Popularity,
		AiredFrom:    data.Aired.From,
		AiredTo:      data.Aired.To,
		ImageURL:     data.Images.JPG.ImageURL,
		LastSyncedAt: now,
	}

	a.Genres = mapGenres(data.Genres, data.Themes, data.Demographics)
	return a
}

func mapGenres(groups ...[]GenreData) []domain.Genre {
	var out []domain.Genre
	seen := make(map[int64]struct{})
	for _, group := range groups {
		for _, g := range group {
			if g.MalID == 0 {
				continue
			}
			if _, ok := seen[g.MalID]; ok {
				continue
			}
			seen[g.MalID] = struct{}{}
			out = append(out, domain.Genre{
				MalGenreID: g.MalID,
				Name:       g.Name,
				Type:       g.Type,
			})
		}
	}
	return out
}

func toPage(resp listResponse, page int, now time.Time) domain.PagedAnime {
	out := domain.PagedAnime{
		Data: make([]domain.Anime, 0, len(resp.Data)),
		Pagination: domain.Pagination{
			CurrentPage: page,
			LastPage:    1,
			HasNextPage: false,
		},
	}

	for _, d := range resp.Data {
		out.Data = append(out.Data, toDomain(d, now))
	}

	if p := resp.Pagination; p != nil {
		out.Pagination.LastPage = p.LastVisiblePage
		if out.Pagination.LastPage < 1 {
			out.Pagination.LastPage = 1
		}
		out.Pagination.HasNextPage = p.HasNextPage
		out.Pagination.TotalItems = p.Items.Total
	}

	return out
}
