package report

import (
	"errors"
	"strconv"
	"strings"

	"attendance-report/internal/model"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

// ErrInvalidFilter is returned for a semester that is neither "all" nor an integer.
var ErrInvalidFilter = errors.New("invalid report filter")

// Filter is the active subject/semester selection.
type Filter struct {
	Subject  string `json:"subject"`
	Semester string `json:"semester"`

	semester    int
	hasSemester bool
}

// ParseFilter normalises raw query values. Empty values mean "all".
func ParseFilter(subject, semester string) (Filter, error) {
	f := Filter{
		Subject:  strings.TrimSpace(subject),
		Semester: strings.TrimSpace(semester),
	}
	if f.Subject == "" || strings.EqualFold(f.Subject, FilterAll) {
		f.Subject = FilterAll
	}
	if f.Semester == "" || strings.EqualFold(f.Semester, FilterAll) {
		f.Semester = FilterAll
		return f, nil
	}

	n, err := strconv.Atoi(f.Semester)
	if err != nil {
		return Filter{}, ErrInvalidFilter
	}
	f.Semester = strconv.Itoa(n)
	f.semester = n
	f.hasSemester = true
	return f, nil
}

// Matches reports whether a lecture falls inside the filter.
// Subjects compare case-insensitively, semesters as integers.
func (f Filter) Matches(l *model.Lecture) bool {
	if f.Subject != "" && f.Subject != FilterAll && !strings.EqualFold(l.Subject, f.Subject) {
		return false
	}
	if f.hasSemester && l.Semester != f.semester {
		return false
	}
	return true
}

// Key identifies the filter snapshot, e.g. "math|3".
func (f Filter) Key() string {
	subject, semester := f.Subject, f.Semester
	if subject == "" {
		subject = FilterAll
	}
	if semester == "" {
		semester = FilterAll
	}
	return strings.ToLower(subject) + "|" + semester
}
