package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/domain"
)

type createUserRequest struct {
	Name          string  `json:"name"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

type updateUserRequest struct {
	Name          *string `json:"name"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req.Name, req.ProfilePicURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := domain.UserPatch{Name: req.Name}
	if req.ProfilePicURL != nil {
		patch.ProfilePicURL = &req.ProfilePicURL
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadProfilePic stores the uploaded image and swaps the user's profile
// picture URL, removing the previous image afterwards.
func (h *Handler) uploadProfilePic(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return
	}
	defer file.Close()

	key := "avatars/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	fileURL, err := h.media.Upload(c.Request.Context(), key, file, contentType)
	if err != nil {
		h.respondError(c, err)
		return
	}

	previous := user.ProfilePicURL
	picURL := &fileURL
	if _, err := h.svc.UpdateUser(c.Request.Context(), id, domain.UserPatch{ProfilePicURL: &picURL}); err != nil {
		h.respondError(c, err)
		return
	}

	if previous != nil {
		if derr := h.media.Delete(c.Request.Context(), *previous); derr != nil {
			h.logger.Warn("failed to delete previous profile picture",
				zap.Uint("user_id", id),
				zap.Error(derr))
		}
	}

	c.JSON(http.StatusOK, gin.H{"profile_pic_url": fileURL})
}
