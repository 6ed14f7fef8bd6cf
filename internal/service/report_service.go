package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-report/internal/dto"
	"attendance-report/internal/model"
	"attendance-report/internal/report"
	"attendance-report/internal/repository"
	pkgerrors "attendance-report/pkg/errors"
	"attendance-report/pkg/metrics"
)

// ── Report errors ──

var (
	// ErrLoadFailed is the single failure kind of a report load. Causes
	// (unreachable store, denied query, bad data) are logged, not returned.
	ErrLoadFailed   = errors.New(report.LoadFailedMessage)
	ErrExportFailed = errors.New("failed to generate report workbook")
)

// ReportService builds teacher attendance reports.
type ReportService interface {
	// Load runs one report load for the teacher's view. A newer Load for the
	// same view makes this one return report.ErrSuperseded. On ErrLoadFailed
	// the returned state is still set and holds what the view should show.
	Load(ctx context.Context, teacherID, viewID string, f report.Filter) (*report.ViewState, error)
	// Filters lists the subjects and semesters the teacher can filter by.
	Filters(ctx context.Context, teacherID string) (*dto.ReportFiltersResponse, error)
	// Export renders the report as an .xlsx workbook.
	Export(ctx context.Context, teacherID string, f report.Filter) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo    *repository.Repository
	coord   *report.Coordinator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewReportService creates a ReportService. m may be nil.
func NewReportService(repo *repository.Repository, coord *report.Coordinator, m *metrics.Metrics, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, coord: coord, metrics: m, logger: logger}
}

// ViewKey identifies a report view: one per teacher, or one per client view
// when the client sends a view id.
func ViewKey(teacherID, viewID string) string {
	if viewID == "" {
		return teacherID
	}
	return teacherID + ":" + viewID
}

// ────────────────────── Load ──────────────────────

func (s *reportService) Load(ctx context.Context, teacherID, viewID string, f report.Filter) (*report.ViewState, error) {
	start := time.Now()
	var rows int

	state, err := s.coord.Run(ctx, ViewKey(teacherID, viewID), f, func(ctx context.Context) ([]report.StudentSummary, error) {
		students, err := s.summarize(ctx, teacherID, f)
		rows = len(students)
		return students, err
	})
	elapsed := time.Since(start).Seconds()

	switch {
	case errors.Is(err, report.ErrSuperseded):
		s.metrics.ObserveLoad(metrics.OutcomeSuperseded, elapsed, 0)
		s.logger.Debug("report load superseded",
			zap.String("teacher_id", teacherID),
			zap.String("filter", f.Key()),
		)
		return nil, err
	case err != nil:
		s.metrics.ObserveLoad(metrics.OutcomeFailed, elapsed, 0)
		s.logger.Error("report load failed",
			zap.String("teacher_id", teacherID),
			zap.String("filter", f.Key()),
			zap.Error(err),
		)
		return &state, ErrLoadFailed
	}

	s.metrics.ObserveLoad(metrics.OutcomeLoaded, elapsed, rows)
	s.logger.Debug("report loaded",
		zap.String("teacher_id", teacherID),
		zap.String("filter", f.Key()),
		zap.Int("students", rows),
		zap.Uint64("generation", state.Generation),
	)
	return &state, nil
}

// summarize runs the two reads (lectures, then users) and the pure join.
func (s *reportService) summarize(ctx context.Context, teacherID string, f report.Filter) ([]report.StudentSummary, error) {
	lectures, err := s.repo.Lecture.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	if len(lectures) == 0 {
		return []report.StudentSummary{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return report.Summarize(lectures, users, f), nil
}

// ────────────────────── Filters ──────────────────────

func (s *reportService) Filters(ctx context.Context, teacherID string) (*dto.ReportFiltersResponse, error) {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load teacher failed", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}

	semesters, err := s.repo.Lecture.ListSemesters(ctx, teacherID)
	if err != nil {
		s.logger.Error("list semesters failed", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}

	subjects := make([]string, 0, len(teacher.Subjects))
	seen := make(map[string]struct{}, len(teacher.Subjects))
	for _, sub := range teacher.Subjects {
		key := strings.ToLower(strings.TrimSpace(sub))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		subjects = append(subjects, sub)
	}
	if semesters == nil {
		semesters = []int{}
	}

	return &dto.ReportFiltersResponse{Subjects: subjects, Semesters: semesters}, nil
}

// ────────────────────── Export ──────────────────────

const (
	studentsSheet = "Students"
	summarySheet  = "Summary"
)

func (s *reportService) Export(ctx context.Context, teacherID string, f report.Filter) (*bytes.Buffer, string, error) {
	students, err := s.summarize(ctx, teacherID, f)
	if err != nil {
		s.logger.Error("export load failed", zap.String("teacher_id", teacherID), zap.String("filter", f.Key()), zap.Error(err))
		return nil, "", ErrLoadFailed
	}
	stats := report.Aggregate(students)

	buf, err := renderWorkbook(f, students, stats)
	if err != nil {
		s.logger.Error("render workbook failed", zap.Error(err))
		return nil, "", ErrExportFailed
	}

	filename := fmt.Sprintf("attendance_%s_sem-%s.xlsx", sanitizeFilePart(f.Subject), sanitizeFilePart(f.Semester))
	return buf, filename, nil
}

var studentHeaders = []string{
	"Roll No", "Name", "Email", "Semester", "Division",
	"Attended", "Total", "Attendance %", "Status", "Trend",
}

func renderWorkbook(f report.Filter, students []report.StudentSummary, stats report.Stats) (*bytes.Buffer, error) {
	xl := excelize.NewFile()
	defer xl.Close()

	idx, err := xl.NewSheet(studentsSheet)
	if err != nil {
		return nil, err
	}
	xl.SetActiveSheet(idx)
	if _, err := xl.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := xl.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := xl.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	riskStyle, err := xl.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000", Bold: true},
	})
	if err != nil {
		return nil, err
	}

	// ── Students ──
	for i, h := range studentHeaders {
		if err := xl.SetCellValue(studentsSheet, cell(i+1, 1), h); err != nil {
			return nil, err
		}
	}
	if err := xl.SetCellStyle(studentsSheet, cell(1, 1), cell(len(studentHeaders), 1), headerStyle); err != nil {
		return nil, err
	}
	_ = xl.SetColWidth(studentsSheet, "A", "A", 10)
	_ = xl.SetColWidth(studentsSheet, "B", "C", 28)
	_ = xl.SetColWidth(studentsSheet, "D", "J", 13)

	for i, st := range students {
		row := i + 2
		values := []interface{}{
			st.RollNumber, st.Name, st.Email, st.Semester, st.Division,
			st.AttendedLectures, st.TotalLectures, st.Attendance, string(st.Status), string(st.Trend),
		}
		for col, v := range values {
			if err := xl.SetCellValue(studentsSheet, cell(col+1, row), v); err != nil {
				return nil, err
			}
		}
		if st.Status == report.StatusRisk {
			if err := xl.SetCellStyle(studentsSheet, cell(8, row), cell(9, row), riskStyle); err != nil {
				return nil, err
			}
		}
	}

	// ── Summary ──
	summary := [][2]interface{}{
		{"Subject", f.Subject},
		{"Semester", f.Semester},
		{"Total students", stats.TotalStudents},
		{"Average attendance %", stats.AverageAttendance},
		{"Students >= 75%", stats.AboveThreshold},
		{"Students at risk (< 70%)", stats.AtRisk},
	}
	for i, kv := range summary {
		if err := xl.SetCellValue(summarySheet, cell(1, i+1), kv[0]); err != nil {
			return nil, err
		}
		if err := xl.SetCellValue(summarySheet, cell(2, i+1), kv[1]); err != nil {
			return nil, err
		}
	}
	_ = xl.SetColWidth(summarySheet, "A", "A", 26)

	buf := new(bytes.Buffer)
	if err := xl.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── helpers ──

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func sanitizeFilePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return report.FilterAll
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}
