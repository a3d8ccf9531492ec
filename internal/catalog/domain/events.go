package domain

import (
	"strconv"

	"github.com/moviweb/moviweb/pkg/events"
)

// Event types emitted by the catalog.
const (
	EventUserCreated   = "catalog.user.created"
	EventMovieImported = "catalog.movie.imported"
	EventFavoriteAdded = "catalog.favorite.added"
)

// NewUserCreatedEvent creates an event for a newly registered user.
func NewUserCreatedEvent(user *User) events.Event {
	return events.NewAggregateEvent(EventUserCreated, strconv.FormatUint(uint64(user.ID), 10), map[string]interface{}{
		"name": user.Name,
	})
}

// NewMovieImportedEvent creates an event for a movie persisted from the
// external metadata service.
func NewMovieImportedEvent(movie *Movie) events.Event {
	data := map[string]interface{}{
		"title": movie.Title,
	}
	if movie.OMDBID != nil {
		data["omdb_id"] = *movie.OMDBID
	}
	return events.NewAggregateEvent(EventMovieImported, strconv.FormatUint(uint64(movie.ID), 10), data)
}

// NewFavoriteAddedEvent creates an event for a user favoriting a movie.
func NewFavoriteAddedEvent(userID, movieID uint) events.Event {
	return events.NewAggregateEvent(EventFavoriteAdded, strconv.FormatUint(uint64(userID), 10), map[string]interface{}{
		"user_id":  userID,
		"movie_id": movieID,
	})
}
