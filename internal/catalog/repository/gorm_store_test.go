package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/internal/catalog/repository"
	pkgerrors "github.com/moviweb/moviweb/pkg/errors"
)

type GormStoreTestSuite struct {
	suite.Suite

	store repository.Store
	ctx   context.Context
}

func (suite *GormStoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = repository.NewGormStore(repository.NewTestDB(suite.T()))
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// User operations

func (suite *GormStoreTestSuite) TestAddUserRoundtrip() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	suite.NotZero(user.ID)

	retrieved, err := suite.store.GetUser(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(retrieved)
	suite.Equal("alice", retrieved.Name)
}

func (suite *GormStoreTestSuite) TestAddUserDuplicateName() {
	_, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)

	_, err = suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().Error(err)
	suite.True(pkgerrors.IsConflict(err))

	users, err := suite.store.GetAllUsers(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(users, 1)
}

func (suite *GormStoreTestSuite) TestGetUserAbsent() {
	user, err := suite.store.GetUser(suite.ctx, 42)
	suite.Require().NoError(err)
	suite.Nil(user)
}

func (suite *GormStoreTestSuite) TestFindUserByName() {
	created, err := suite.store.AddUser(suite.ctx, "bob", nil)
	suite.Require().NoError(err)

	found, err := suite.store.FindUserByName(suite.ctx, "bob")
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(created.ID, found.ID)

	missing, err := suite.store.FindUserByName(suite.ctx, "carol")
	suite.Require().NoError(err)
	suite.Nil(missing)
}

func (suite *GormStoreTestSuite) TestUpdateUser() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)

	pic := strPtr("https://example.com/alice.png")
	updated, err := suite.store.UpdateUser(suite.ctx, user.ID, domain.UserPatch{
		Name:          strPtr("alicia"),
		ProfilePicURL: &pic,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal("alicia", updated.Name)
	suite.Require().NotNil(updated.ProfilePicURL)
	suite.Equal("https://example.com/alice.png", *updated.ProfilePicURL)
}

func (suite *GormStoreTestSuite) TestUpdateUserAbsent() {
	updated, err := suite.store.UpdateUser(suite.ctx, 42, domain.UserPatch{Name: strPtr("ghost")})
	suite.Require().NoError(err)
	suite.Nil(updated)
}

func (suite *GormStoreTestSuite) TestDeleteUserCascadesOwnLinksOnly() {
	alice, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	bob, err := suite.store.AddUser(suite.ctx, "bob", nil)
	suite.Require().NoError(err)

	_, err = suite.store.AddMovieForUser(suite.ctx, alice.ID, "Heat", nil, intPtr(1995), floatPtr(9))
	suite.Require().NoError(err)
	_, err = suite.store.AddMovieForUser(suite.ctx, bob.ID, "Heat", nil, intPtr(1995), floatPtr(7))
	suite.Require().NoError(err)

	deleted, err := suite.store.DeleteUser(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	aliceMovies, err := suite.store.GetUserMovies(suite.ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Empty(aliceMovies)

	// Bob's link and the shared movie survive.
	bobMovies, err := suite.store.GetUserMovies(suite.ctx, bob.ID)
	suite.Require().NoError(err)
	suite.Len(bobMovies, 1)

	movies, err := suite.store.GetAllMovies(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(movies, 1)
}

func (suite *GormStoreTestSuite) TestDeleteUserAbsent() {
	deleted, err := suite.store.DeleteUser(suite.ctx, 42)
	suite.Require().NoError(err)
	suite.False(deleted)
}

// Movie operations

func (suite *GormStoreTestSuite) TestAddMovieDedupByTitleYear() {
	first, err := suite.store.AddMovie(suite.ctx, "Heat", strPtr("Michael Mann"), intPtr(1995))
	suite.Require().NoError(err)

	second, err := suite.store.AddMovie(suite.ctx, "Heat", nil, intPtr(1995))
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	remake, err := suite.store.AddMovie(suite.ctx, "Heat", nil, intPtr(2025))
	suite.Require().NoError(err)
	suite.NotEqual(first.ID, remake.ID)

	movies, err := suite.store.GetAllMovies(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(movies, 2)
}

func (suite *GormStoreTestSuite) TestAddMovieNilYearDedup() {
	first, err := suite.store.AddMovie(suite.ctx, "Heat", nil, nil)
	suite.Require().NoError(err)

	second, err := suite.store.AddMovie(suite.ctx, "Heat", nil, nil)
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)
}

func (suite *GormStoreTestSuite) TestUpdateMovie() {
	movie, err := suite.store.AddMovie(suite.ctx, "Heat", nil, intPtr(1995))
	suite.Require().NoError(err)

	updated, err := suite.store.UpdateMovie(suite.ctx, movie.ID, domain.MoviePatch{
		Director:   strPtr("Michael Mann"),
		IMDBRating: strPtr("8.3"),
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Require().NotNil(updated.Director)
	suite.Equal("Michael Mann", *updated.Director)

	absent, err := suite.store.UpdateMovie(suite.ctx, 9999, domain.MoviePatch{Title: strPtr("x")})
	suite.Require().NoError(err)
	suite.Nil(absent)
}

func (suite *GormStoreTestSuite) TestDeleteMovieKeepsGenres() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	movie, err := suite.store.AddMovie(suite.ctx, "Heat", nil, intPtr(1995))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.AddGenresToMovie(suite.ctx, movie.ID, []string{"Crime", "Drama"}))
	_, err = suite.store.LinkMovieToUser(suite.ctx, user.ID, movie.ID, nil)
	suite.Require().NoError(err)

	deleted, err := suite.store.DeleteMovie(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	// Favorite links are gone, genre rows are not.
	favorites, err := suite.store.GetUserMovies(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Empty(favorites)

	other, err := suite.store.AddMovie(suite.ctx, "Collateral", nil, intPtr(2004))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.AddGenresToMovie(suite.ctx, other.ID, []string{"crime"}))

	reloaded, err := suite.store.GetMovie(suite.ctx, other.ID)
	suite.Require().NoError(err)
	suite.Require().Len(reloaded.Genres, 1)
	// Case-insensitive reuse of the surviving genre row.
	suite.Equal("Crime", reloaded.Genres[0].Name)
}

func (suite *GormStoreTestSuite) TestCreateMovieDuplicateExternalID() {
	omdbID := "tt0113277"
	first, err := suite.store.CreateMovie(suite.ctx, &domain.Movie{Title: "Heat", OMDBID: &omdbID})
	suite.Require().NoError(err)

	second, err := suite.store.CreateMovie(suite.ctx, &domain.Movie{Title: "Heat (again)", OMDBID: &omdbID})
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)
	suite.Equal("Heat", second.Title)
}

func (suite *GormStoreTestSuite) TestFindMovieByOMDBID() {
	omdbID := "tt0113277"
	created, err := suite.store.CreateMovie(suite.ctx, &domain.Movie{Title: "Heat", OMDBID: &omdbID})
	suite.Require().NoError(err)

	found, err := suite.store.FindMovieByOMDBID(suite.ctx, omdbID)
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(created.ID, found.ID)

	missing, err := suite.store.FindMovieByOMDBID(suite.ctx, "tt9999999")
	suite.Require().NoError(err)
	suite.Nil(missing)
}

// User–Movie linkage

func (suite *GormStoreTestSuite) TestAddMovieForUserIdempotent() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)

	first, err := suite.store.AddMovieForUser(suite.ctx, user.ID, "Heat", nil, intPtr(1995), floatPtr(8))
	suite.Require().NoError(err)

	second, err := suite.store.AddMovieForUser(suite.ctx, user.ID, "Heat", nil, intPtr(1995), floatPtr(9.5))
	suite.Require().NoError(err)
	suite.Equal(first.MovieID, second.MovieID)

	links, err := suite.store.GetUserMovies(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(links, 1)
	suite.Require().NotNil(links[0].Rating)
	// The later call's rating wins.
	suite.InDelta(9.5, *links[0].Rating, 0.001)
}

func (suite *GormStoreTestSuite) TestLinkMovieToUserKeepsRating() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	movie, err := suite.store.AddMovie(suite.ctx, "Heat", nil, intPtr(1995))
	suite.Require().NoError(err)

	_, err = suite.store.LinkMovieToUser(suite.ctx, user.ID, movie.ID, floatPtr(8))
	suite.Require().NoError(err)

	// Re-linking without a rating does not clear the stored one.
	link, err := suite.store.LinkMovieToUser(suite.ctx, user.ID, movie.ID, nil)
	suite.Require().NoError(err)
	suite.Require().NotNil(link.Rating)
	suite.InDelta(8, *link.Rating, 0.001)
}

func (suite *GormStoreTestSuite) TestGetUserMoviesInsertionOrder() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)

	titles := []string{"Heat", "Collateral", "Thief"}
	for _, title := range titles {
		movie, err := suite.store.AddMovie(suite.ctx, title, nil, nil)
		suite.Require().NoError(err)
		_, err = suite.store.LinkMovieToUser(suite.ctx, user.ID, movie.ID, nil)
		suite.Require().NoError(err)
	}

	links, err := suite.store.GetUserMovies(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(links, 3)
	for i, link := range links {
		suite.Equal(titles[i], link.Movie.Title)
	}
}

func (suite *GormStoreTestSuite) TestGetUserMoviesAbsentUser() {
	links, err := suite.store.GetUserMovies(suite.ctx, 42)
	suite.Require().NoError(err)
	suite.Empty(links)
}

func (suite *GormStoreTestSuite) TestUpdateMovieForUser() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	link, err := suite.store.AddMovieForUser(suite.ctx, user.ID, "Heat", nil, intPtr(1995), nil)
	suite.Require().NoError(err)
	suite.False(link.Watched)

	watched := true
	updated, err := suite.store.UpdateMovieForUser(suite.ctx, user.ID, link.MovieID, domain.FavoritePatch{
		Rating:  floatPtr(9),
		Watched: &watched,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.True(updated.Watched)

	absent, err := suite.store.UpdateMovieForUser(suite.ctx, user.ID, 9999, domain.FavoritePatch{Watched: &watched})
	suite.Require().NoError(err)
	suite.Nil(absent)
}

func (suite *GormStoreTestSuite) TestDeleteMovieForUser() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	link, err := suite.store.AddMovieForUser(suite.ctx, user.ID, "Heat", nil, intPtr(1995), nil)
	suite.Require().NoError(err)

	deleted, err := suite.store.DeleteMovieForUser(suite.ctx, user.ID, link.MovieID)
	suite.Require().NoError(err)
	suite.True(deleted)

	again, err := suite.store.DeleteMovieForUser(suite.ctx, user.ID, link.MovieID)
	suite.Require().NoError(err)
	suite.False(again)

	// The movie itself survives the unfavorite.
	movie, err := suite.store.GetMovie(suite.ctx, link.MovieID)
	suite.Require().NoError(err)
	suite.NotNil(movie)
}

func (suite *GormStoreTestSuite) TestAddedOnStampedUTC() {
	user, err := suite.store.AddUser(suite.ctx, "alice", nil)
	suite.Require().NoError(err)
	link, err := suite.store.AddMovieForUser(suite.ctx, user.ID, "Heat", nil, intPtr(1995), nil)
	suite.Require().NoError(err)

	suite.False(link.AddedOn.IsZero())
	suite.WithinDuration(time.Now().UTC(), link.AddedOn, 5*time.Second)
}

func TestGormStoreTestSuite(t *testing.T) {
	suite.Run(t, new(GormStoreTestSuite))
}
