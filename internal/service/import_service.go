package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"attendance-report/internal/dto"
	"attendance-report/internal/model"
	"attendance-report/internal/repository"
)

// ── Import errors ──

var (
	ErrImportBadFile = errors.New("export file is not valid JSON")
	ErrImportNoData  = errors.New("export file has no lectures or users")
)

// ExportFile is a realtime-database JSON export:
// {"lectures": {"<id>": {...}}, "users": {"<id>": {...}}}.
type ExportFile struct {
	Lectures map[string]ExportLecture `json:"lectures"`
	Users    map[string]ExportUser    `json:"users"`
}

// ExportLecture is one lecture node. Students maps present student ids to
// any value (usually true or a check-in timestamp).
type ExportLecture struct {
	TeacherID string                     `json:"teacherId"`
	Subject   string                     `json:"subject"`
	Semester  flexInt                    `json:"semester"`
	StartedAt flexInt                    `json:"startedAt"` // unix millis
	Students  map[string]json.RawMessage `json:"students"`
}

// ExportUser is one user node.
type ExportUser struct {
	Role       string      `json:"role"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Semester   flexInt     `json:"semester"`
	Division   string      `json:"division"`
	RollNumber flexString  `json:"rollNumber"`
	Subjects   flexStrings `json:"subjects"`
}

// ImportService loads export files into the store.
type ImportService interface {
	ParseExport(r io.Reader) (*ExportFile, error)
	Import(ctx context.Context, file *ExportFile) (*dto.ImportResponse, error)
}

type importService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService creates an ImportService.
func NewImportService(repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{repo: repo, logger: logger}
}

func (s *importService) ParseExport(r io.Reader) (*ExportFile, error) {
	var file ExportFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(file.Lectures) == 0 && len(file.Users) == 0 {
		return nil, ErrImportNoData
	}
	return &file, nil
}

// Import validates every record first, then upserts users and lectures.
// Invalid records are reported and skipped; a store error aborts the run.
func (s *importService) Import(ctx context.Context, file *ExportFile) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{}

	users := make([]model.User, 0, len(file.Users))
	for _, id := range sortedKeys(file.Users) {
		u := file.Users[id]
		role := strings.ToLower(strings.TrimSpace(u.Role))
		if role != model.RoleTeacher && role != model.RoleStudent {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Kind: "user", ID: id, Reason: fmt.Sprintf("unknown role %q", u.Role)})
			continue
		}
		users = append(users, model.User{
			UserID:     id,
			Role:       role,
			Name:       strings.TrimSpace(u.Name),
			Email:      strings.TrimSpace(u.Email),
			Semester:   int(u.Semester),
			Division:   strings.TrimSpace(u.Division),
			RollNumber: string(u.RollNumber),
			Subjects:   model.StringList(u.Subjects),
		})
	}

	lectures := make([]model.Lecture, 0, len(file.Lectures))
	for _, id := range sortedKeys(file.Lectures) {
		l := file.Lectures[id]
		if strings.TrimSpace(l.TeacherID) == "" || strings.TrimSpace(l.Subject) == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Kind: "lecture", ID: id, Reason: "teacherId and subject are required"})
			continue
		}
		lec := model.Lecture{
			LectureID: id,
			TeacherID: l.TeacherID,
			Subject:   strings.TrimSpace(l.Subject),
			Semester:  int(l.Semester),
		}
		if l.StartedAt > 0 {
			lec.StartedAt = time.UnixMilli(int64(l.StartedAt)).UTC()
		}
		for _, sid := range sortedKeys(l.Students) {
			lec.Attendees = append(lec.Attendees, model.LectureAttendee{LectureID: id, StudentID: sid})
		}
		resp.Attendees += len(lec.Attendees)
		lectures = append(lectures, lec)
	}

	if len(users) > 0 {
		if err := s.repo.User.Upsert(ctx, users); err != nil {
			s.logger.Error("import users failed", zap.Error(err))
			return nil, fmt.Errorf("import users: %w", err)
		}
	}
	if len(lectures) > 0 {
		if err := s.repo.Lecture.Upsert(ctx, lectures); err != nil {
			s.logger.Error("import lectures failed", zap.Error(err))
			return nil, fmt.Errorf("import lectures: %w", err)
		}
	}
	resp.Users = len(users)
	resp.Lectures = len(lectures)

	s.logger.Info("import finished",
		zap.Int("users", resp.Users),
		zap.Int("lectures", resp.Lectures),
		zap.Int("attendees", resp.Attendees),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ── lenient JSON scalars ──
// Exports written by different client versions store numbers as strings
// and lists as objects keyed by push id.

type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*n = flexInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = flexInt(f)
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

type flexStrings []string

func (l *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*l = nil
		return nil
	}
	var list []string
	if len(b) > 0 && b[0] == '{' {
		var m map[string]string
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		for _, k := range sortedKeys(m) {
			list = append(list, m[k])
		}
	} else if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	out := list[:0]
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}
