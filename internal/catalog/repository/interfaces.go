package repository

import (
	"context"

	"github.com/moviweb/moviweb/internal/catalog/domain"
)

// Store is the data-access contract over users, movies, and favorites.
// Absent entities are reported as nil/false results, not errors; errors
// are reserved for constraint violations and storage failures. Every
// mutating call is atomic.
type Store interface {
	// User CRUD

	// AddUser creates a user. A taken name yields a Conflict error.
	AddUser(ctx context.Context, name string, profilePicURL *string) (*domain.User, error)
	// GetUser returns nil when the user does not exist.
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	// FindUserByName returns nil when no user carries the name.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	// UpdateUser merges the patch into an existing user; nil when absent.
	UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error)
	// DeleteUser removes the user and all its favorite links; false when absent.
	DeleteUser(ctx context.Context, id uint) (bool, error)

	// Movie CRUD

	// AddMovie returns the existing movie matching (title, year) or creates one.
	AddMovie(ctx context.Context, title string, director *string, year *int) (*domain.Movie, error)
	GetMovie(ctx context.Context, id uint) (*domain.Movie, error)
	GetAllMovies(ctx context.Context) ([]*domain.Movie, error)
	UpdateMovie(ctx context.Context, id uint, patch domain.MoviePatch) (*domain.Movie, error)
	// DeleteMovie removes the movie and its favorite links; genre rows stay.
	DeleteMovie(ctx context.Context, id uint) (bool, error)
	// FindMovieByOMDBID returns nil when no movie carries the external id.
	FindMovieByOMDBID(ctx context.Context, omdbID string) (*domain.Movie, error)
	// CreateMovie inserts a fully populated movie. A concurrent insert of the
	// same external id is resolved by returning the winning row.
	CreateMovie(ctx context.Context, movie *domain.Movie) (*domain.Movie, error)
	// AddGenresToMovie find-or-creates genres by name and attaches them.
	AddGenresToMovie(ctx context.Context, movieID uint, names []string) error

	// User–Movie linkage

	// GetUserMovies returns the user's favorites in insertion order, with the
	// movie preloaded; empty when the user is absent or has none.
	GetUserMovies(ctx context.Context, userID uint) ([]*domain.UserMovie, error)
	// AddMovieForUser find-or-creates the movie by (title, year) and the link
	// by (user, movie), setting the rating on either path. Idempotent.
	AddMovieForUser(ctx context.Context, userID uint, title string, director *string, year *int, rating *float64) (*domain.UserMovie, error)
	// LinkMovieToUser find-or-creates the link for an existing movie. A nil
	// rating leaves an existing link's rating untouched.
	LinkMovieToUser(ctx context.Context, userID, movieID uint, rating *float64) (*domain.UserMovie, error)
	// UpdateMovieForUser merges the patch into the link; nil when absent.
	UpdateMovieForUser(ctx context.Context, userID, movieID uint, patch domain.FavoritePatch) (*domain.UserMovie, error)
	// DeleteMovieForUser removes the link; false when absent.
	DeleteMovieForUser(ctx context.Context, userID, movieID uint) (bool, error)
}
