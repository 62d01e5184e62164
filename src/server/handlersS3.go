package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	app "gallery/src/app"
	"gallery/src/auth"

	"github.com/gin-gonic/gin"
)

type (
	ImageHandler struct {
		images *app.ImageService
	}

	// SubmitBody keeps imageName untyped so a non-string value can be told
	// apart from a malformed body.
	SubmitBody struct {
		ImageName any `json:"imageName"`
	}
)

const limitQueryParam = "limit"

func NewImageHandler(images *app.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "image-service"})
}

func (h *ImageHandler) Submit(c *gin.Context) {
	var body SubmitBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		abortWith(c, app.Validation("Invalid request body"))
		return
	}
	imageName, ok := body.ImageName.(string)
	if !ok {
		abortWith(c, app.Validation("Image name is required"))
		return
	}

	principal := auth.MustPrincipal(c)
	submission, err := h.images.Submit(c.Request.Context(), principal.Subject(), imageName)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"presignedUrl":  submission.PresignedURL,
		"imageId":       submission.ImageID,
		"uuidFilename":  submission.UUIDFilename,
		"cloudfrontUrl": submission.CloudfrontURL,
		"message":       "Presigned URL generated successfully",
	})
}

func (h *ImageHandler) Gallery(c *gin.Context) {
	images, err := h.images.Gallery(c.Request.Context(), parseLimit(c))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "images": images, "count": len(images)})
}

// parseLimit reads ?limit. Absent or non-numeric values give the default;
// range checking is left to the service.
func parseLimit(c *gin.Context) int {
	raw, ok := c.GetQuery(limitQueryParam)
	if !ok {
		return app.DefaultGalleryLimit
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return app.DefaultGalleryLimit
	}
	return limit
}
