package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franclarke/multidub-ai/orchestrator"
	"github.com/franclarke/multidub-ai/store"
	"github.com/franclarke/multidub-ai/types"
)

// RegisterVideoRoutes registers the dubbing service endpoints.
func RegisterVideoRoutes(r *gin.Engine, orc *orchestrator.Orchestrator) {
	c := &videosController{orc: orc}
	g := r.Group("/api")
	g.POST("/videos/upload", c.handleRegisterUpload)
	g.POST("/videos", c.handleRegisterExternal)
	g.POST("/videos/process", c.handleProcess)
	g.GET("/videos/:id/status", c.handleStatus)
	g.POST("/outputs/:id/cancel", c.handleCancel)
}

type videosController struct {
	orc *orchestrator.Orchestrator
}

// RegisterUploadRequest asks for a signed URL to upload a source video.
type RegisterUploadRequest struct {
	OwnerID     string `json:"ownerId" binding:"required"`
	Title       string `json:"title"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

// RegisterExternalRequest registers a video hosted at an external URL.
type RegisterExternalRequest struct {
	OwnerID   string `json:"ownerId" binding:"required"`
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl" binding:"required"`
}

func (v *videosController) handleRegisterUpload(c *gin.Context) {
	var req RegisterUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	grant, err := v.orc.RegisterUpload(c.Request.Context(), req.OwnerID, req.Title, req.ContentType, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grant)
}

func (v *videosController) handleRegisterExternal(c *gin.Context) {
	var req RegisterExternalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := v.orc.RegisterExternal(c.Request.Context(), req.OwnerID, req.Title, req.SourceURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, input)
}

func (v *videosController) handleProcess(c *gin.Context) {
	var req types.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outputs, err := v.orc.StartDubbing(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"videoId": req.VideoID, "outputs": outputs})
}

func (v *videosController) handleStatus(c *gin.Context) {
	status, err := v.orc.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (v *videosController) handleCancel(c *gin.Context) {
	if err := v.orc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancellation requested"})
}

// respondError maps service errors onto HTTP statuses: validation failures
// are the caller's fault, unknown ids are 404, the rest is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case types.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
