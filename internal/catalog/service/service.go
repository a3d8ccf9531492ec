package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/internal/catalog/repository"
	"github.com/moviweb/moviweb/pkg/errors"
	"github.com/moviweb/moviweb/pkg/events"
)

// MetadataProvider resolves titles and external identifiers against the
// external metadata service.
type MetadataProvider interface {
	// SearchID returns the external identifier of the first match for a title.
	SearchID(ctx context.Context, title string) (string, error)

	// Fetch retrieves the normalized detail record for an external identifier.
	Fetch(ctx context.Context, imdbID string) (*domain.MovieMetadata, error)
}

// Service handles catalog business logic.
type Service struct {
	store  repository.Store
	meta   MetadataProvider
	bus    events.Bus
	logger *zap.Logger
}

// New creates a new catalog service. meta may be nil when no metadata
// service is configured; import operations then fail with an internal
// configuration error.
func New(store repository.Store, meta MetadataProvider, bus events.Bus, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		meta:   meta,
		bus:    bus,
		logger: logger.Named("catalog"),
	}
}

// User operations

// CreateUser registers a new user.
func (s *Service) CreateUser(ctx context.Context, name string, profilePicURL *string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.BadRequest("user name is required")
	}

	user, err := s.store.AddUser(ctx, name, profilePicURL)
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(domain.NewUserCreatedEvent(user))
	s.logger.Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("name", user.Name))

	return user, nil
}

// EnsureUser returns the user with the given name, creating it if absent.
func (s *Service) EnsureUser(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.BadRequest("user name is required")
	}
	user, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.CreateUser(ctx, name, nil)
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("user not found")
	}
	return user, nil
}

// ListUsers lists all users.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.store.GetAllUsers(ctx)
}

// UpdateUser merges the patch into an existing user.
func (s *Service) UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("user not found")
	}
	return user, nil
}

// DeleteUser removes a user and all of their favorites.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("user not found")
	}
	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

// Movie operations

// CreateMovie adds a movie to the catalog, reusing an existing row with
// the same title and year.
func (s *Service) CreateMovie(ctx context.Context, title string, director *string, year *int) (*domain.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.BadRequest("movie title is required")
	}
	return s.store.AddMovie(ctx, title, director, year)
}

// GetMovie retrieves a movie by ID.
func (s *Service) GetMovie(ctx context.Context, id uint) (*domain.Movie, error) {
	movie, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NotFound("movie not found")
	}
	return movie, nil
}

// ListMovies lists all movies.
func (s *Service) ListMovies(ctx context.Context) ([]*domain.Movie, error) {
	return s.store.GetAllMovies(ctx)
}

// UpdateMovie merges the patch into an existing movie.
func (s *Service) UpdateMovie(ctx context.Context, id uint, patch domain.MoviePatch) (*domain.Movie, error) {
	movie, err := s.store.UpdateMovie(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, errors.NotFound("movie not found")
	}
	return movie, nil
}

// DeleteMovie removes a movie and the favorite links referencing it.
func (s *Service) DeleteMovie(ctx context.Context, id uint) error {
	deleted, err := s.store.DeleteMovie(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("movie not found")
	}
	s.logger.Info("movie deleted", zap.Uint("movie_id", id))
	return nil
}

// Favorites

// ListFavorites returns a user's favorite movies in insertion order.
func (s *Service) ListFavorites(ctx context.Context, userID uint) ([]*domain.UserMovie, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetUserMovies(ctx, userID)
}

// AddFavorite find-or-creates the movie by (title, year) and links it to
// the user, overwriting the rating. Idempotent under repeated calls.
func (s *Service) AddFavorite(ctx context.Context, userID uint, title string, director *string, year *int, rating *float64) (*domain.UserMovie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.BadRequest("movie title is required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	link, err := s.store.AddMovieForUser(ctx, userID, title, director, year, rating)
	if err != nil {
		return nil, err
	}

	s.bus.PublishAsync(domain.NewFavoriteAddedEvent(userID, link.MovieID))
	return link, nil
}

// UpdateFavorite merges rating/watched changes into the link.
func (s *Service) UpdateFavorite(ctx context.Context, userID, movieID uint, patch domain.FavoritePatch) (*domain.UserMovie, error) {
	link, err := s.store.UpdateMovieForUser(ctx, userID, movieID, patch)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, errors.NotFound("favorite not found")
	}
	return link, nil
}

// RemoveFavorite deletes the link between a user and a movie.
func (s *Service) RemoveFavorite(ctx context.Context, userID, movieID uint) error {
	deleted, err := s.store.DeleteMovieForUser(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("favorite not found")
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID uint) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.NotFound("user not found")
	}
	return nil
}
