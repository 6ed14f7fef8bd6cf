package dto

// ── Reports ──

// ReportQuery is the filter of the report endpoints.
// Empty values mean "all".
type ReportQuery struct {
	Subject  string `form:"subject"  binding:"omitempty,max=100"`
	Semester string `form:"semester" binding:"omitempty,max=8"`
}

// ReportFiltersResponse lists the values the filter dropdowns offer.
type ReportFiltersResponse struct {
	Subjects  []string `json:"subjects"`
	Semesters []int    `json:"semesters"`
}
