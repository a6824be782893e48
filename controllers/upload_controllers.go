package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

const defaultMaxUploadBytes = 5 << 20

type UploadController struct {
	Images   services.ImageStorage
	MaxBytes int64
}

func NewUploadController(images services.ImageStorage) *UploadController {
	return &UploadController{Images: images, MaxBytes: defaultMaxUploadBytes}
}

// UploadImage stores multipart field "image" and returns its reference for
// a restaurant's imageReference or a menu item's imageUrl.
func (uc *UploadController) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.MaxBytes+1<<20)
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondAppError(c, utils.FieldError("image", "an image file is required"))
		return
	}
	if file.Size > uc.MaxBytes {
		utils.RespondAppError(c, utils.FieldError("image", "must be at most 5MB"))
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	// trust the bytes, not the client's Content-Type
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	if _, ok := services.ImageExtension(contentType); !ok {
		utils.RespondAppError(c, utils.FieldError("image", "must be a JPEG, PNG, WebP or GIF image"))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ref, err := uc.Images.Save(c.Request.Context(), file.Filename, contentType, f)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Image uploaded", gin.H{"imageReference": ref})
}
