package artifact

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/abduss/artifactrepo/internal/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts artifact operations under the provided router
// groups. List and download are public; upload and delete need a caller
// identity from the auth middleware.
func RegisterRoutes(public, protected *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	public.GET("/artifacts", handler.listArtifacts)
	public.GET("/artifacts/:name", handler.downloadArtifact)
	protected.POST("/artifacts", handler.uploadArtifact)
	protected.DELETE("/artifacts/:name", handler.deleteArtifact)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) uploadArtifact(c *gin.Context) {
	caller, ok := auth.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file payload"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rec, err := h.service.Upload(c.Request.Context(), caller, fileHeader.Filename, contentType, file, fileHeader.Size, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid artifact name"})
		case errors.Is(err, ErrNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "an artifact with this name already exists"})
		case errors.Is(err, ErrTypeNotAllowed):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "content type not allowed"})
		case errors.Is(err, ErrTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "artifact too large"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload artifact"})
		}
		return
	}

	// A failed blob write still yields a well-formed record; the status
	// code tells the two outcomes apart.
	if rec.Status != StatusSucceeded {
		c.JSON(http.StatusInternalServerError, rec)
		return
	}
	c.Header("Location", rec.URL)
	c.JSON(http.StatusCreated, rec)
}

func (h *httpHandler) listArtifacts(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list artifacts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": records})
}

func (h *httpHandler) downloadArtifact(c *gin.Context) {
	name := c.Param("name")

	rec, reader, err := h.service.Open(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) || errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download artifact"})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", rec.ContentType)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
}

func (h *httpHandler) deleteArtifact(c *gin.Context) {
	caller, ok := auth.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, c.Param("name")); err != nil {
		if errors.Is(err, ErrDeleteForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this artifact"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete artifact"})
		return
	}

	c.Status(http.StatusNoContent)
}
