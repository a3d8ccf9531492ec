package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/pkg/errors"
)

// ImportItem identifies one movie to import, by title or by external id.
type ImportItem struct {
	Title  string `json:"title"`
	IMDBID string `json:"imdb_id"`
}

// AddedMovie is one successful import in a batch result.
type AddedMovie struct {
	MovieID uint   `json:"movie_id"`
	IMDBID  string `json:"imdb_id"`
	Title   string `json:"title"`
}

// ItemError is one failed import in a batch result.
type ItemError struct {
	Item  ImportItem `json:"movie"`
	Error string     `json:"error"`
}

// BatchResult reports the per-item outcomes of a batch import.
type BatchResult struct {
	Added  []AddedMovie `json:"added"`
	Errors []ItemError  `json:"errors"`
}

// ImportMovie resolves an item against the external metadata service and
// persists it. Items whose external id is already stored return the
// existing row without any external call. When only a title is given, the
// first search match is taken.
func (s *Service) ImportMovie(ctx context.Context, item ImportItem) (*domain.Movie, error) {
	if s.meta == nil {
		return nil, errors.Internal("metadata service API key not configured")
	}
	if item.Title == "" && item.IMDBID == "" {
		return nil, errors.BadRequest("title or imdb_id required")
	}

	imdbID := item.IMDBID
	if imdbID == "" {
		var err error
		if imdbID, err = s.meta.SearchID(ctx, item.Title); err != nil {
			return nil, err
		}
	}

	existing, err := s.store.FindMovieByOMDBID(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	meta, err := s.meta.Fetch(ctx, imdbID)
	if err != nil {
		return nil, err
	}

	movie := &domain.Movie{
		Title:      meta.Title,
		Director:   meta.Director,
		Year:       meta.Year,
		OMDBID:     &imdbID,
		PlotShort:  meta.PlotShort,
		IMDBRating: meta.IMDBRating,
		PosterURL:  meta.PosterURL,
	}
	movie, err = s.store.CreateMovie(ctx, movie)
	if err != nil {
		return nil, err
	}

	if len(meta.Genres) > 0 {
		if gerr := s.store.AddGenresToMovie(ctx, movie.ID, meta.Genres); gerr != nil {
			// The movie row is already committed; genres are best effort.
			s.logger.Warn("failed to attach genres",
				zap.Uint("movie_id", movie.ID),
				zap.Error(gerr))
		}
	}

	s.bus.PublishAsync(domain.NewMovieImportedEvent(movie))
	s.logger.Info("movie imported",
		zap.Uint("movie_id", movie.ID),
		zap.String("imdb_id", imdbID),
		zap.String("title", movie.Title))

	return movie, nil
}

// ImportFavorites imports a batch of items and links each success to the
// user. Items are processed independently: one failure never aborts or
// rolls back the others.
func (s *Service) ImportFavorites(ctx context.Context, userID uint, items []ImportItem) (*BatchResult, error) {
	if s.meta == nil {
		return nil, errors.Internal("metadata service API key not configured")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Added:  []AddedMovie{},
		Errors: []ItemError{},
	}

	for _, item := range items {
		movie, err := s.ImportMovie(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Item: item, Error: err.Error()})
			continue
		}

		if _, err := s.store.LinkMovieToUser(ctx, userID, movie.ID, nil); err != nil {
			result.Errors = append(result.Errors, ItemError{Item: item, Error: err.Error()})
			continue
		}

		imdbID := ""
		if movie.OMDBID != nil {
			imdbID = *movie.OMDBID
		}
		result.Added = append(result.Added, AddedMovie{
			MovieID: movie.ID,
			IMDBID:  imdbID,
			Title:   movie.Title,
		})
		s.bus.PublishAsync(domain.NewFavoriteAddedEvent(userID, movie.ID))
	}

	return result, nil
}
