package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/internal/catalog/service"
)

type addFavoriteRequest struct {
	Title    string   `json:"title"`
	Director *string  `json:"director"`
	Year     *int     `json:"year"`
	Rating   *float64 `json:"rating"`
}

// favoriteResponse flattens a favorite link into the movie's fields plus
// the per-user attributes.
type favoriteResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Director   *string   `json:"director,omitempty"`
	Year       *int      `json:"year,omitempty"`
	OMDBID     *string   `json:"omdb_id,omitempty"`
	PosterURL  *string   `json:"poster_url,omitempty"`
	IMDBRating *string   `json:"imdb_rating,omitempty"`
	Rating     *float64  `json:"rating,omitempty"`
	Watched    bool      `json:"watched"`
	AddedOn    time.Time `json:"added_on"`
}

func newFavoriteResponse(link *domain.UserMovie) favoriteResponse {
	return favoriteResponse{
		ID:         link.Movie.ID,
		Title:      link.Movie.Title,
		Director:   link.Movie.Director,
		Year:       link.Movie.Year,
		OMDBID:     link.Movie.OMDBID,
		PosterURL:  link.Movie.PosterURL,
		IMDBRating: link.Movie.IMDBRating,
		Rating:     link.Rating,
		Watched:    link.Watched,
		AddedOn:    link.AddedOn,
	}
}

func (h *Handler) listFavorites(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	links, err := h.svc.ListFavorites(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	favorites := make([]favoriteResponse, 0, len(links))
	for _, link := range links {
		favorites = append(favorites, newFavoriteResponse(link))
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *Handler) addFavorite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := h.svc.AddFavorite(c.Request.Context(), id, req.Title, req.Director, req.Year, req.Rating)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// addFavoritesBatch accepts a single import item or a list of them, adds
// each through the metadata service, and reports per-item outcomes. A
// response with any failures gets a partial-success status.
func (h *Handler) addFavoritesBatch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body required"})
		return
	}

	var items []service.ImportItem
	if err := json.Unmarshal(raw, &items); err != nil {
		var single service.ImportItem
		if err := json.Unmarshal(raw, &single); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		items = []service.ImportItem{single}
	}

	result, err := h.svc.ImportFavorites(c.Request.Context(), id, items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func (h *Handler) updateFavorite(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	movieID, ok := idParam(c, "movieID")
	if !ok {
		return
	}

	var patch domain.FavoritePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := h.svc.UpdateFavorite(c.Request.Context(), userID, movieID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *Handler) removeFavorite(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	movieID, ok := idParam(c, "movieID")
	if !ok {
		return
	}

	if err := h.svc.RemoveFavorite(c.Request.Context(), userID, movieID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
