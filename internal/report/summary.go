package report

import (
	"math"
	"sort"

	"attendance-report/internal/model"
)

// Thresholds on the rounded attendance percentage.
const (
	ExcellentThreshold = 90
	GoodThreshold      = 75
	WarningThreshold   = 70
	TrendUpThreshold   = 80
)

// Status buckets a student's attendance.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusWarning   Status = "warning"
	StatusRisk      Status = "risk"
)

// Trend is the direction badge shown next to a student.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// StudentSummary is the derived per-student attendance row.
type StudentSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Semester         int    `json:"semester"`
	Division         string `json:"division"`
	RollNumber       string `json:"roll_number"`
	Attendance       int    `json:"attendance"`
	TotalLectures    int    `json:"total_lectures"`
	AttendedLectures int    `json:"attended_lectures"`
	Status           Status `json:"status"`
	Trend            Trend  `json:"trend"`
}

// Percent returns round(attended/total*100). total must be positive.
func Percent(attended, total int) int {
	return int(math.Round(float64(attended) / float64(total) * 100))
}

// Classify maps a percentage to its status bucket.
func Classify(percent int) Status {
	switch {
	case percent >= ExcellentThreshold:
		return StatusExcellent
	case percent >= GoodThreshold:
		return StatusGood
	case percent >= WarningThreshold:
		return StatusWarning
	default:
		return StatusRisk
	}
}

// TrendOf maps a percentage to its trend badge.
func TrendOf(percent int) Trend {
	switch {
	case percent >= TrendUpThreshold:
		return TrendUp
	case percent < WarningThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// Summarize joins the teacher's lectures against the user directory and
// returns one row per student, worst attendance first.
//
// Lectures outside the filter are ignored. Users that are not students are
// skipped, and when no lecture matches no student is returned at all. Ties
// keep the order of users.
func Summarize(lectures []model.Lecture, users []model.User, f Filter) []StudentSummary {
	total := 0
	attended := make(map[string]int)
	for i := range lectures {
		if !f.Matches(&lectures[i]) {
			continue
		}
		total++
		seen := make(map[string]struct{}, len(lectures[i].Attendees))
		for _, id := range lectures[i].PresentStudentIDs() {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			attended[id]++
		}
	}

	out := make([]StudentSummary, 0, len(users))
	if total == 0 {
		return out
	}

	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		n := attended[u.UserID]
		percent := Percent(n, total)
		name := u.Name
		if name == "" {
			name = "Unknown"
		}
		out = append(out, StudentSummary{
			ID:               u.UserID,
			Name:             name,
			Email:            u.Email,
			Semester:         u.Semester,
			Division:         u.Division,
			RollNumber:       u.RollNumber,
			Attendance:       percent,
			TotalLectures:    total,
			AttendedLectures: n,
			Status:           Classify(percent),
			Trend:            TrendOf(percent),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attendance < out[j].Attendance
	})
	return out
}
