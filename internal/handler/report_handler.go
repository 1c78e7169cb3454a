package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/service"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type importService interface {
	Import(ctx context.Context, r io.Reader, month string, confirmDuplicate bool) (*service.ImportResult, error)
	Template() (string, []byte, error)
}

type exportService interface {
	Export(ctx context.Context, filter models.StudentFilter, format service.ExportFormat) (*service.ExportFile, error)
}

type receiptService interface {
	Build(ctx context.Context, id string) (*service.Receipt, error)
	PDF(ctx context.Context, id string) (string, []byte, error)
	Reminder(ctx context.Context, id string) (string, error)
}

// ReportHandler serves spreadsheet import/export and receipts.
type ReportHandler struct {
	imports  importService
	exports  exportService
	receipts receiptService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(imports importService, exports exportService, receipts receiptService) *ReportHandler {
	return &ReportHandler{imports: imports, exports: exports, receipts: receipts}
}

// Import godoc
// @Summary Import students from a spreadsheet
// @Description Returns 409 with the duplicates in meta unless confirm=true.
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Param month query string false "Target month (M/YYYY), defaults to the current month"
// @Param confirm query bool false "Import even when duplicates exist"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /import [post]
func (h *ReportHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot open upload"))
		return
	}
	defer f.Close()

	result, err := h.imports.Import(c.Request.Context(), f, c.Query("month"), confirmed(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Template godoc
// @Summary Download the sample import workbook
// @Tags Reports
// @Produce octet-stream
// @Success 200 {file} file
// @Router /import/template [get]
func (h *ReportHandler) Template(c *gin.Context) {
	name, data, err := h.imports.Template()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, name, xlsxContentType, data)
}

// Export godoc
// @Summary Export the filtered list
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "xlsx (default), csv or pdf"
// @Param class query string false "Class filter"
// @Param month query string false "Month filter"
// @Param search query string false "Name search"
// @Success 200 {file} file
// @Router /export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), studentFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Receipt godoc
// @Summary Receipt data, or a printable PDF with format=pdf
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Param format query string false "json (default) or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/receipt [get]
func (h *ReportHandler) Receipt(c *gin.Context) {
	if c.Query("format") == string(service.FormatPDF) {
		name, data, err := h.receipts.PDF(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, name, "application/pdf", data)
		return
	}
	rc, err := h.receipts.Build(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rc)
}

// Reminder godoc
// @Summary Payment reminder text for the parent
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/reminder [get]
func (h *ReportHandler) Reminder(c *gin.Context) {
	msg, err := h.receipts.Reminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": msg})
}
