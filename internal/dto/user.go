package dto

// ── User ──

// CurrentUserResponse is the authenticated teacher's profile (GET /auth/me).
type CurrentUserResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Subjects []string `json:"subjects"`
}
