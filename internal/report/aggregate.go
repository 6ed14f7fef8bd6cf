package report

import "math"

// Stats are the summary cards above the student table.
type Stats struct {
	TotalStudents     int `json:"total_students"`
	AverageAttendance int `json:"average_attendance"`
	AboveThreshold    int `json:"above_threshold"`
	AtRisk            int `json:"at_risk"`
}

// Aggregate reduces the student rows to summary counts.
// The average of an empty list is 0.
func Aggregate(students []StudentSummary) Stats {
	s := Stats{TotalStudents: len(students)}
	if len(students) == 0 {
		return s
	}

	sum := 0
	for _, st := range students {
		sum += st.Attendance
		if st.Attendance >= GoodThreshold {
			s.AboveThreshold++
		}
		if st.Attendance < WarningThreshold {
			s.AtRisk++
		}
	}
	s.AverageAttendance = int(math.Round(float64(sum) / float64(len(students))))
	return s
}
