package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/internal/catalog/service"
)

type createMovieRequest struct {
	Title    string  `json:"title"`
	Director *string `json:"director"`
	Year     *int    `json:"year"`
}

func (h *Handler) listMovies(c *gin.Context) {
	movies, err := h.svc.ListMovies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *Handler) createMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	movie, err := h.svc.CreateMovie(c.Request.Context(), req.Title, req.Director, req.Year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// importMovie enriches a single movie from the external metadata service
// without linking it to any user.
func (h *Handler) importMovie(c *gin.Context) {
	var item service.ImportItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	movie, err := h.svc.ImportMovie(c.Request.Context(), item)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (h *Handler) getMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	movie, err := h.svc.GetMovie(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *Handler) updateMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var patch domain.MoviePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	movie, err := h.svc.UpdateMovie(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *Handler) deleteMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteMovie(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
