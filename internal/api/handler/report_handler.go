package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"attendance-report/internal/dto"
	"attendance-report/internal/report"
	"attendance-report/internal/service"
	"attendance-report/pkg/response"
)

// ViewHeader lets a client with several report views open keep them apart.
const ViewHeader = "X-Report-View"

const maxViewIDLen = 64

// ReportHandler serves the attendance report endpoints.
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// ListStudents loads the report for the current filter.
// GET /api/v1/reports/students?subject=math&semester=3
func (h *ReportHandler) ListStudents(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	viewID := c.GetHeader(ViewHeader)
	if len(viewID) > maxViewIDLen {
		response.BadRequest(c, 10001, "report view id too long")
		return
	}

	state, err := h.reportSvc.Load(c.Request.Context(), teacherID, viewID, f)
	if err != nil {
		h.handleReportError(c, err, state)
		return
	}

	response.OK(c, state)
}

// Filters lists the subjects and semesters available to the teacher.
// GET /api/v1/reports/filters
func (h *ReportHandler) Filters(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	filters, err := h.reportSvc.Filters(c.Request.Context(), teacherID)
	if err != nil {
		h.handleReportError(c, err, nil)
		return
	}

	response.OK(c, filters)
}

// Export downloads the report as an Excel workbook.
// GET /api/v1/reports/export?subject=math&semester=3
func (h *ReportHandler) Export(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.Export(c.Request.Context(), teacherID, f)
	if err != nil {
		h.handleReportError(c, err, nil)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func bindFilter(c *gin.Context) (report.Filter, bool) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return report.Filter{}, false
	}
	f, err := report.ParseFilter(q.Subject, q.Semester)
	if err != nil {
		response.BadRequest(c, 10001, "semester must be a number or \"all\"")
		return report.Filter{}, false
	}
	return f, true
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error, state *report.ViewState) {
	switch {
	case errors.Is(err, service.ErrLoadFailed):
		if state != nil {
			response.ErrorWithData(c, http.StatusInternalServerError, 20001, report.LoadFailedMessage, state)
			return
		}
		response.Error(c, http.StatusInternalServerError, 20001, report.LoadFailedMessage)
	case errors.Is(err, report.ErrSuperseded):
		response.Conflict(c, 20002, "superseded by a newer report request")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11001, "user not found")
	case errors.Is(err, service.ErrExportFailed):
		_ = c.Error(err)
		response.InternalError(c)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
