package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/ledger"
	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/service"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, req service.CreateStudentRequest, confirmDuplicate bool) (*models.Student, error)
	Update(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error)
	Remove(ctx context.Context, id string, confirmed bool) error
	FindDuplicates(ctx context.Context, candidates []ledger.Candidate, month string) ([]ledger.Candidate, error)
	Select(ctx context.Context, id string) error
	Selected() string
	Summary(ctx context.Context, filter models.StudentFilter) (models.LedgerSummary, error)
	Classes(ctx context.Context) ([]string, error)
	Months(ctx context.Context) ([]string, error)
	MarkPaid(ctx context.Context, id string, req service.PaymentRequest) (*models.Student, error)
	RevertPayment(ctx context.Context, id string, confirmed bool) (*models.Student, error)
	Payments(ctx context.Context) ([]models.Payment, error)
	ToggleSent(ctx context.Context, id string) (*models.Student, error)
	SetNote(ctx context.Context, id, note string) (*models.Student, error)
}

// DuplicateCheckRequest asks which candidates already exist for a month.
type DuplicateCheckRequest struct {
	Month      string             `json:"month" binding:"required"`
	Candidates []ledger.Candidate `json:"candidates" binding:"required"`
}

// NoteRequest replaces a record's note.
type NoteRequest struct {
	Note string `json:"note"`
}

// StudentHandler exposes the ledger records, payments and flags.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List student records
// @Tags Students
// @Produce json
// @Param class query string false "Class filter, ALL for every class"
// @Param month query string false "Month filter (M/YYYY), ALL for every month"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := studentFilter(c)
	students, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{
		"count":    len(students),
		"selected": h.service.Selected(),
	})
}

// Get godoc
// @Summary Get a student record
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Create godoc
// @Summary Add a student record
// @Description Returns 409 with the duplicates in meta unless confirm=true.
// @Tags Students
// @Accept json
// @Produce json
// @Param confirm query bool false "Insert even when a duplicate exists"
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.service.Create(c.Request.Context(), req, confirmed(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, st)
}

// Update godoc
// @Summary Edit a student record
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	var patch models.StudentPatch
	if !bindJSON(c, &patch) {
		return
	}
	st, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Delete godoc
// @Summary Delete a student record
// @Tags Students
// @Param id path string true "Student ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 428 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Duplicates godoc
// @Summary Check candidates against a month
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body DuplicateCheckRequest true "Candidates"
// @Success 200 {object} response.Envelope
// @Router /students/duplicates [post]
func (h *StudentHandler) Duplicates(c *gin.Context) {
	var req DuplicateCheckRequest
	if !bindJSON(c, &req) {
		return
	}
	dups, err := h.service.FindDuplicates(c.Request.Context(), req.Candidates, req.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dups, map[string]interface{}{"count": len(dups)})
}

// Select godoc
// @Summary Mark a record as the current selection
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id}/select [post]
func (h *StudentHandler) Select(c *gin.Context) {
	if err := h.service.Select(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Totals for the filtered list
// @Tags Students
// @Produce json
// @Param class query string false "Class filter"
// @Param month query string false "Month filter"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /students/summary [get]
func (h *StudentHandler) Summary(c *gin.Context) {
	sum, err := h.service.Summary(c.Request.Context(), studentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sum)
}

// Classes godoc
// @Summary Distinct class names
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/classes [get]
func (h *StudentHandler) Classes(c *gin.Context) {
	classes, err := h.service.Classes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Months godoc
// @Summary Distinct months, newest first
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/months [get]
func (h *StudentHandler) Months(c *gin.Context) {
	months, err := h.service.Months(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, months)
}

// MarkPaid godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.PaymentRequest false "Amount, date and method"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payment [post]
func (h *StudentHandler) MarkPaid(c *gin.Context) {
	var req service.PaymentRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	st, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// RevertPayment godoc
// @Summary Undo a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Student ID"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /students/{id}/payment [delete]
func (h *StudentHandler) RevertPayment(c *gin.Context) {
	st, err := h.service.RevertPayment(c.Request.Context(), c.Param("id"), confirmed(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Payments godoc
// @Summary Payment audit log
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *StudentHandler) Payments(c *gin.Context) {
	payments, err := h.service.Payments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments)
}

// ToggleSent godoc
// @Summary Flip the receipt-sent flag
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/sent [post]
func (h *StudentHandler) ToggleSent(c *gin.Context) {
	st, err := h.service.ToggleSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// SetNote godoc
// @Summary Replace the note
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body NoteRequest true "Note"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/note [put]
func (h *StudentHandler) SetNote(c *gin.Context) {
	var req NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.service.SetNote(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}
