package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/service"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

const maxUploadBytes = 20 << 20

type backupService interface {
	Serialize(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte, confirmed bool) (*service.RestoreResult, error)
	Filename() string
}

// BackupHandler exposes the backup envelope download and restore.
type BackupHandler struct {
	service backupService
}

// NewBackupHandler constructs a backup handler.
func NewBackupHandler(svc backupService) *BackupHandler {
	return &BackupHandler{service: svc}
}

// Download godoc
// @Summary Download the backup envelope
// @Tags Backup
// @Produce json
// @Success 200 {file} file
// @Router /backup [get]
func (h *BackupHandler) Download(c *gin.Context) {
	data, err := h.service.Serialize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, h.service.Filename(), "application/json", data)
}

// Restore godoc
// @Summary Overwrite local data from a backup envelope
// @Description Accepts the envelope as the JSON body or as a multipart "file" field.
// @Tags Backup
// @Accept json
// @Accept mpfd
// @Produce json
// @Param confirm query bool true "Must be true"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /backup/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	data, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Restore(c.Request.Context(), data, confirmed(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// readUpload returns the multipart "file" field when present, otherwise the
// raw request body.
func readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot open upload")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read upload")
		}
		return data, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read request body")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body is empty")
	}
	return data, nil
}
