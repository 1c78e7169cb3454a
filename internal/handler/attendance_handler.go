package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, id, date string) (*models.Student, error)
	ToggleToday(ctx context.Context, id string) (*models.Student, error)
	RemoveAttendance(ctx context.Context, id, date string) (*models.Student, error)
	SetAttendance(ctx context.Context, id string, history []string) (*models.Student, error)
	BulkCandidates(ctx context.Context, filter models.StudentFilter, date string) ([]models.Student, error)
	BulkCheckIn(ctx context.Context, ids []string, date string) (int, error)
}

// CheckInRequest records one session. An empty date means today; toggle
// removes today's session when it is already recorded.
type CheckInRequest struct {
	Date   string `json:"date"`
	Toggle bool   `json:"toggle"`
}

// AttendanceRequest replaces a whole history.
type AttendanceRequest struct {
	History []string `json:"history"`
}

// BulkCheckInRequest checks in several records at once.
type BulkCheckInRequest struct {
	IDs  []string `json:"ids" binding:"required"`
	Date string   `json:"date"`
}

// AttendanceHandler exposes session tracking.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// CheckIn godoc
// @Summary Record a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body CheckInRequest false "Date or toggle"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	var (
		st  *models.Student
		err error
	)
	if req.Toggle && req.Date == "" {
		st, err = h.service.ToggleToday(c.Request.Context(), c.Param("id"))
	} else {
		st, err = h.service.CheckIn(c.Request.Context(), c.Param("id"), req.Date)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Remove godoc
// @Summary Remove one session date
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance/{date} [delete]
func (h *AttendanceHandler) Remove(c *gin.Context) {
	st, err := h.service.RemoveAttendance(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Set godoc
// @Summary Replace the session history
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body AttendanceRequest true "History"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [put]
func (h *AttendanceHandler) Set(c *gin.Context) {
	var req AttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.service.SetAttendance(c.Request.Context(), c.Param("id"), req.History)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// BulkCandidates godoc
// @Summary Filtered records not yet checked in
// @Tags Attendance
// @Produce json
// @Param class query string false "Class filter"
// @Param month query string false "Month filter"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/bulk-candidates [get]
func (h *AttendanceHandler) BulkCandidates(c *gin.Context) {
	list, err := h.service.BulkCandidates(c.Request.Context(), studentFilter(c), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, map[string]interface{}{"count": len(list)})
}

// Bulk godoc
// @Summary Check in several records
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body BulkCheckInRequest true "Student IDs"
// @Success 200 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	var req BulkCheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	changed, err := h.service.BulkCheckIn(c.Request.Context(), req.IDs, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"changed": changed})
}
