package domain

import (
	"time"

	"gorm.io/gorm"
)

// User owns a collection of favorite movies.
type User struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Name          string  `json:"name" gorm:"size:128;not null;uniqueIndex"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty" gorm:"size:512"`

	Favorites []UserMovie `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// Movie is a catalog entry, optionally enriched from the OMDb API.
// OMDBID is the natural key for externally sourced movies; (Title, Year)
// is the natural key for manually created ones.
type Movie struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Title      string  `json:"title" gorm:"size:256;not null;index:idx_movies_title_year"`
	Director   *string `json:"director,omitempty" gorm:"size:128"`
	Year       *int    `json:"year,omitempty" gorm:"index:idx_movies_title_year"`
	OMDBID     *string `json:"omdb_id,omitempty" gorm:"size:32;uniqueIndex"`
	PlotShort  *string `json:"plot_short,omitempty" gorm:"type:text"`
	IMDBRating *string `json:"imdb_rating,omitempty" gorm:"size:8"`
	PosterURL  *string `json:"poster_url,omitempty" gorm:"size:512"`

	Genres    []Genre     `json:"genres,omitempty" gorm:"many2many:movie_genres"`
	Favorites []UserMovie `json:"-" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (Movie) TableName() string { return "movies" }

// Genre is a tag shared by many movies. Deleting a movie leaves its
// genres in place.
type Genre struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex"`

	Movies []Movie `json:"-" gorm:"many2many:movie_genres"`
}

func (Genre) TableName() string { return "genres" }

// UserMovie links a user to a favorite movie with per-user attributes.
// The composite primary key guarantees at most one row per (user, movie).
type UserMovie struct {
	UserID  uint      `json:"user_id" gorm:"primaryKey"`
	MovieID uint      `json:"movie_id" gorm:"primaryKey"`
	Rating  *float64  `json:"rating,omitempty"`
	Watched bool      `json:"watched" gorm:"not null;default:false"`
	AddedOn time.Time `json:"added_on"`

	User  User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Movie Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (UserMovie) TableName() string { return "user_movies" }

// BeforeCreate stamps the association with its creation time in UTC.
func (um *UserMovie) BeforeCreate(*gorm.DB) error {
	if um.AddedOn.IsZero() {
		um.AddedOn = time.Now().UTC()
	}
	return nil
}

// UserPatch carries the updatable User attributes. Nil fields are left
// untouched.
type UserPatch struct {
	Name          *string  `json:"name,omitempty"`
	ProfilePicURL **string `json:"-"`
}

// MoviePatch carries the updatable Movie attributes.
type MoviePatch struct {
	Title      *string  `json:"title,omitempty"`
	Director   *string  `json:"director,omitempty"`
	Year       *int     `json:"year,omitempty"`
	PlotShort  *string  `json:"plot_short,omitempty"`
	IMDBRating *string  `json:"imdb_rating,omitempty"`
	PosterURL  *string  `json:"poster_url,omitempty"`
}

// FavoritePatch carries the updatable UserMovie attributes.
type FavoritePatch struct {
	Rating  *float64 `json:"rating,omitempty"`
	Watched *bool    `json:"watched,omitempty"`
}

// MovieMetadata is a movie record as returned by an external metadata
// provider, already normalized to the catalog's shape.
type MovieMetadata struct {
	Title      string
	Director   *string
	Year       *int
	OMDBID     string
	PlotShort  *string
	IMDBRating *string
	PosterURL  *string
	Genres     []string
}
