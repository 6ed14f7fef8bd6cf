package dto

// ── Import ──

// ImportError describes one skipped record of an export file.
type ImportError struct {
	Kind   string `json:"kind"` // "user" or "lecture"
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ImportResponse summarises an import run.
type ImportResponse struct {
	Users     int           `json:"users"`
	Lectures  int           `json:"lectures"`
	Attendees int           `json:"attendees"`
	Failed    int           `json:"failed"`
	Errors    []ImportError `json:"errors,omitempty"`
}
