package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	pkgerrors "github.com/moviweb/moviweb/pkg/errors"
)

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// User operations

func (s *GormStore) AddUser(ctx context.Context, name string, profilePicURL *string) (*domain.User, error) {
	user := &domain.User{Name: name, ProfilePicURL: profilePicURL}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return nil, pkgerrors.Conflict("user name already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	return &user, nil
}

func (s *GormStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error) {
	var user *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.ProfilePicURL != nil {
			u.ProfilePicURL = *patch.ProfilePicURL
		}
		if err := tx.Save(&u).Error; err != nil {
			if pkgerrors.IsDuplicateError(err) {
				return pkgerrors.Conflict("user name already exists")
			}
			return err
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.UserMovie{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}

// Movie operations

func (s *GormStore) AddMovie(ctx context.Context, title string, director *string, year *int) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := movieByTitleYear(tx, title, year)
		if err != nil {
			return err
		}
		if existing != nil {
			movie = existing
			return nil
		}
		m := &domain.Movie{Title: title, Director: director, Year: year}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add movie: %w", err)
	}
	return movie, nil
}

func (s *GormStore) GetMovie(ctx context.Context, id uint) (*domain.Movie, error) {
	var movie domain.Movie
	if err := s.db.WithContext(ctx).Preload("Genres").First(&movie, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &movie, nil
}

func (s *GormStore) GetAllMovies(ctx context.Context) ([]*domain.Movie, error) {
	var movies []*domain.Movie
	if err := s.db.WithContext(ctx).Preload("Genres").Order("id").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

func (s *GormStore) UpdateMovie(ctx context.Context, id uint, patch domain.MoviePatch) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.Movie
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if patch.Title != nil {
			m.Title = *patch.Title
		}
		if patch.Director != nil {
			m.Director = patch.Director
		}
		if patch.Year != nil {
			m.Year = patch.Year
		}
		if patch.PlotShort != nil {
			m.PlotShort = patch.PlotShort
		}
		if patch.IMDBRating != nil {
			m.IMDBRating = patch.IMDBRating
		}
		if patch.PosterURL != nil {
			m.PosterURL = patch.PosterURL
		}
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		movie = &m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	return movie, nil
}

func (s *GormStore) DeleteMovie(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.UserMovie{}, "movie_id = ?", id).Error; err != nil {
			return err
		}
		// Drop the bridge rows; the genre rows themselves stay.
		if err := tx.Model(&domain.Movie{ID: id}).Association("Genres").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&domain.Movie{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete movie: %w", err)
	}
	return deleted, nil
}

func (s *GormStore) FindMovieByOMDBID(ctx context.Context, omdbID string) (*domain.Movie, error) {
	var movie domain.Movie
	if err := s.db.WithContext(ctx).Preload("Genres").First(&movie, "omdb_id = ?", omdbID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find movie by external id: %w", err)
	}
	return &movie, nil
}

func (s *GormStore) CreateMovie(ctx context.Context, movie *domain.Movie) (*domain.Movie, error) {
	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		// A concurrent import of the same external id lost the race;
		// the stored row wins.
		if pkgerrors.IsDuplicateError(err) && movie.OMDBID != nil {
			existing, ferr := s.FindMovieByOMDBID(ctx, *movie.OMDBID)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	return movie, nil
}

func (s *GormStore) AddGenresToMovie(ctx context.Context, movieID uint, names []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			genre, err := genreByName(tx, name)
			if err != nil {
				return err
			}
			if genre == nil {
				genre = &domain.Genre{Name: name}
				if err := tx.Create(genre).Error; err != nil {
					if !pkgerrors.IsDuplicateError(err) {
						return err
					}
					if genre, err = genreByName(tx, name); err != nil {
						return err
					}
				}
			}
			if err := tx.Model(&domain.Movie{ID: movieID}).Association("Genres").Append(genre); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to attach genres: %w", err)
	}
	return nil
}

// User–Movie linkage

func (s *GormStore) GetUserMovies(ctx context.Context, userID uint) ([]*domain.UserMovie, error) {
	var links []*domain.UserMovie
	if err := s.db.WithContext(ctx).
		Preload("Movie").
		Preload("Movie.Genres").
		Where("user_id = ?", userID).
		Order("added_on, movie_id").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list user movies: %w", err)
	}
	return links, nil
}

func (s *GormStore) AddMovieForUser(ctx context.Context, userID uint, title string, director *string, year *int, rating *float64) (*domain.UserMovie, error) {
	var link *domain.UserMovie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movie, err := movieByTitleYear(tx, title, year)
		if err != nil {
			return err
		}
		if movie == nil {
			movie = &domain.Movie{Title: title, Director: director, Year: year}
			if err := tx.Create(movie).Error; err != nil {
				return err
			}
		}
		link, err = upsertLink(tx, userID, movie.ID, rating, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add movie for user: %w", err)
	}
	return link, nil
}

func (s *GormStore) LinkMovieToUser(ctx context.Context, userID, movieID uint, rating *float64) (*domain.UserMovie, error) {
	var link *domain.UserMovie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		link, err = upsertLink(tx, userID, movieID, rating, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to link movie to user: %w", err)
	}
	return link, nil
}

func (s *GormStore) UpdateMovieForUser(ctx context.Context, userID, movieID uint, patch domain.FavoritePatch) (*domain.UserMovie, error) {
	var link *domain.UserMovie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l domain.UserMovie
		if err := tx.First(&l, "user_id = ? AND movie_id = ?", userID, movieID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if patch.Rating != nil {
			l.Rating = patch.Rating
		}
		if patch.Watched != nil {
			l.Watched = *patch.Watched
		}
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		link = &l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user movie: %w", err)
	}
	return link, nil
}

func (s *GormStore) DeleteMovieForUser(ctx context.Context, userID, movieID uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&domain.UserMovie{}, "user_id = ? AND movie_id = ?", userID, movieID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete user movie: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Helpers

func movieByTitleYear(tx *gorm.DB, title string, year *int) (*domain.Movie, error) {
	query := tx.Where("title = ?", title)
	if year == nil {
		query = query.Where("year IS NULL")
	} else {
		query = query.Where("year = ?", *year)
	}
	var movie domain.Movie
	if err := query.First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

func genreByName(tx *gorm.DB, name string) (*domain.Genre, error) {
	var genre domain.Genre
	if err := tx.First(&genre, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &genre, nil
}

// upsertLink find-or-creates the (user, movie) association. overwriteNil
// controls whether a nil rating overwrites an existing one; the create
// path always takes the given rating.
func upsertLink(tx *gorm.DB, userID, movieID uint, rating *float64, overwriteNil bool) (*domain.UserMovie, error) {
	var link domain.UserMovie
	err := tx.First(&link, "user_id = ? AND movie_id = ?", userID, movieID).Error
	switch {
	case err == nil:
		if rating != nil || overwriteNil {
			link.Rating = rating
			if serr := tx.Save(&link).Error; serr != nil {
				return nil, serr
			}
		}
		return &link, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		link = domain.UserMovie{UserID: userID, MovieID: movieID, Rating: rating}
		if cerr := tx.Create(&link).Error; cerr != nil {
			// Lost a race against a concurrent favorite-add: keep the
			// stored row and apply the rating there.
			if pkgerrors.IsDuplicateError(cerr) {
				if ferr := tx.First(&link, "user_id = ? AND movie_id = ?", userID, movieID).Error; ferr != nil {
					return nil, ferr
				}
				if rating != nil || overwriteNil {
					link.Rating = rating
					if serr := tx.Save(&link).Error; serr != nil {
						return nil, serr
					}
				}
				return &link, nil
			}
			return nil, cerr
		}
		return &link, nil
	default:
		return nil, err
	}
}
