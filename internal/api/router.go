package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/service"
	"github.com/moviweb/moviweb/internal/config"
	"github.com/moviweb/moviweb/internal/storage"
	pkgerrors "github.com/moviweb/moviweb/pkg/errors"
)

// Handler bundles the dependencies of the HTTP endpoints.
type Handler struct {
	svc    *service.Service
	media  storage.MediaStorage
	logger *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(svc *service.Service, media storage.MediaStorage, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		media:  media,
		logger: logger.Named("http"),
	}
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/api/health", h.health)

	if cfg.Storage.Type == "local" {
		router.Static("/media", cfg.Storage.LocalPath)
	}

	users := router.Group("/api/users")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
		users.POST("/:id/profile-pic", h.uploadProfilePic)

		users.GET("/:id/movies", h.listFavorites)
		users.POST("/:id/movies", h.addFavorite)
		users.POST("/:id/add-movies", h.addFavoritesBatch)
		users.PATCH("/:id/movies/:movieID", h.updateFavorite)
		users.DELETE("/:id/movies/:movieID", h.removeFavorite)
	}

	movies := router.Group("/api/movies")
	{
		movies.GET("", h.listMovies)
		movies.POST("", h.createMovie)
		movies.POST("/import", h.importMovie)
		movies.GET("/:id", h.getMovie)
		movies.PATCH("/:id", h.updateMovie)
		movies.DELETE("/:id", h.deleteMovie)
	}

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the error taxonomy onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case pkgerrors.IsNotFound(err):
		status = http.StatusNotFound
	case pkgerrors.IsConflict(err):
		status = http.StatusConflict
	case pkgerrors.IsBadRequest(err):
		status = http.StatusBadRequest
	case pkgerrors.IsUpstream(err):
		status = http.StatusBadGateway
	}

	message := "internal server error"
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": message})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
