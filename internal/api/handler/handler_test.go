package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"attendance-report/internal/dto"
	"attendance-report/internal/report"
	"attendance-report/internal/service"
	"attendance-report/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock UserService ──

type mockUserService struct {
	result *dto.CurrentUserResponse
	err    error
}

func (m *mockUserService) GetCurrentUser(_ context.Context, _ string) (*dto.CurrentUserResponse, error) {
	return m.result, m.err
}

// ── Mock ReportService ──

type mockReportService struct {
	loadState   *report.ViewState
	loadErr     error
	gotTeacher  string
	gotView     string
	gotFilter   report.Filter
	filters     *dto.ReportFiltersResponse
	filtersErr  error
	exportBuf   *bytes.Buffer
	exportName  string
	exportErr   error
	exportCalls int
}

func (m *mockReportService) Load(_ context.Context, teacherID, viewID string, f report.Filter) (*report.ViewState, error) {
	m.gotTeacher, m.gotView, m.gotFilter = teacherID, viewID, f
	return m.loadState, m.loadErr
}

func (m *mockReportService) Filters(_ context.Context, _ string) (*dto.ReportFiltersResponse, error) {
	return m.filters, m.filtersErr
}

func (m *mockReportService) Export(_ context.Context, _ string, f report.Filter) (*bytes.Buffer, string, error) {
	m.exportCalls++
	m.gotFilter = f
	return m.exportBuf, m.exportName, m.exportErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func withAuth(c *gin.Context) {
	c.Set(CtxUserID, "teacher-1")
	c.Set(CtxRole, "teacher")
}

func serve(method, route, target string, h gin.HandlerFunc, auth bool, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	if auth {
		r.Use(withAuth)
	}
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stateEnvelope struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    report.ViewState `json:"data"`
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parseState(t *testing.T, w *httptest.ResponseRecorder) stateEnvelope {
	t.Helper()
	var env stateEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return env
}

func loadedState() *report.ViewState {
	s := report.NewViewState()
	s = report.Reduce(s, report.LoadStarted{Generation: 1}, report.FailureRetain)
	s = report.Reduce(s, report.LoadSucceeded{Generation: 1, Students: []report.StudentSummary{
		{ID: "s1", Name: "Asha", Attendance: 68, Status: report.StatusRisk, Trend: report.TrendDown},
		{ID: "s2", Name: "Bilal", Attendance: 92, Status: report.StatusExcellent, Trend: report.TrendUp},
	}}, report.FailureRetain)
	return &s
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_GetCurrentUser_Success(t *testing.T) {
	h := NewUserHandler(&mockUserService{result: &dto.CurrentUserResponse{ID: "teacher-1", Name: "Meera", Subjects: []string{"Math"}}})

	w := serve("GET", "/auth/me", "/auth/me", h.GetCurrentUser, true, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestUserHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	w := serve("GET", "/auth/me", "/auth/me", h.GetCurrentUser, false, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestUserHandler_GetCurrentUser_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrUserNotFound})

	w := serve("GET", "/auth/me", "/auth/me", h.GetCurrentUser, true, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_ListStudents_Success(t *testing.T) {
	mock := &mockReportService{loadState: loadedState()}
	h := NewReportHandler(mock)

	w := serve("GET", "/reports/students", "/reports/students?subject=Math&semester=3", h.ListStudents, true,
		map[string]string{ViewHeader: "tab-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env := parseState(t, w)
	if env.Data.Phase != report.PhaseLoaded || len(env.Data.Students) != 2 {
		t.Errorf("unexpected payload: %+v", env.Data)
	}
	if env.Data.Stats.AtRisk != 1 || env.Data.Stats.AboveThreshold != 1 || env.Data.Stats.AverageAttendance != 80 {
		t.Errorf("unexpected stats: %+v", env.Data.Stats)
	}
	if mock.gotTeacher != "teacher-1" || mock.gotView != "tab-1" {
		t.Errorf("teacher/view not forwarded: %q %q", mock.gotTeacher, mock.gotView)
	}
	if mock.gotFilter.Subject != "Math" || mock.gotFilter.Semester != "3" {
		t.Errorf("filter not forwarded: %+v", mock.gotFilter)
	}
}

func TestReportHandler_ListStudents_DefaultsToAll(t *testing.T) {
	mock := &mockReportService{loadState: loadedState()}
	h := NewReportHandler(mock)

	w := serve("GET", "/reports/students", "/reports/students", h.ListStudents, true, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotFilter.Subject != report.FilterAll || mock.gotFilter.Semester != report.FilterAll {
		t.Errorf("expected all/all, got %+v", mock.gotFilter)
	}
}

func TestReportHandler_ListStudents_BadSemester(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	w := serve("GET", "/reports/students", "/reports/students?semester=third", h.ListStudents, true, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_ListStudents_LoadFailedCarriesState(t *testing.T) {
	failed := loadedState()
	next := report.Reduce(*failed, report.LoadStarted{Generation: 2}, report.FailureRetain)
	next = report.Reduce(next, report.LoadFailed{Generation: 2, Err: errors.New("x")}, report.FailureRetain)
	h := NewReportHandler(&mockReportService{loadState: &next, loadErr: service.ErrLoadFailed})

	w := serve("GET", "/reports/students", "/reports/students", h.ListStudents, true, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	env := parseState(t, w)
	if env.Code != 20001 || env.Message != "Failed to load student reports" {
		t.Errorf("unexpected error envelope: %d %q", env.Code, env.Message)
	}
	if env.Data.Phase != report.PhaseFailed || len(env.Data.Students) != 2 {
		t.Errorf("retained rows should be returned, got %+v", env.Data)
	}
}

func TestReportHandler_ListStudents_Superseded(t *testing.T) {
	h := NewReportHandler(&mockReportService{loadErr: report.ErrSuperseded})

	w := serve("GET", "/reports/students", "/reports/students", h.ListStudents, true, nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("expected code 20002, got %d", resp.Code)
	}
}

func TestReportHandler_ListStudents_ViewIDTooLong(t *testing.T) {
	h := NewReportHandler(&mockReportService{loadState: loadedState()})

	w := serve("GET", "/reports/students", "/reports/students", h.ListStudents, true,
		map[string]string{ViewHeader: strings.Repeat("v", maxViewIDLen+1)})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_Filters(t *testing.T) {
	h := NewReportHandler(&mockReportService{filters: &dto.ReportFiltersResponse{Subjects: []string{"Math"}, Semesters: []int{3}}})

	w := serve("GET", "/reports/filters", "/reports/filters", h.Filters, true, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var env struct {
		Data dto.ReportFiltersResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Subjects) != 1 || env.Data.Semesters[0] != 3 {
		t.Errorf("unexpected filters: %+v", env.Data)
	}
}

func TestReportHandler_Export_Success(t *testing.T) {
	mock := &mockReportService{exportBuf: bytes.NewBufferString("xlsx-bytes"), exportName: "attendance_math_sem-3.xlsx"}
	h := NewReportHandler(mock)

	w := serve("GET", "/reports/export", "/reports/export?subject=math&semester=3", h.Export, true, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.openxmlformats") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_math_sem-3.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestReportHandler_Export_LoadFailed(t *testing.T) {
	h := NewReportHandler(&mockReportService{exportErr: service.ErrLoadFailed})

	w := serve("GET", "/reports/export", "/reports/export", h.Export, true, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("expected code 20001, got %d", resp.Code)
	}
}
