package model

// Roles stored in users.role.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is a person profile, table users.
// Subjects is only populated for teachers; Semester, Division and
// RollNumber only for students.
type User struct {
	UserID     string     `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Role       string     `gorm:"type:varchar(20);not null;index" json:"role"`
	Name       string     `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Email      string     `gorm:"type:varchar(255);not null;default:''" json:"email"`
	Semester   int        `gorm:"not null;default:0" json:"semester"`
	Division   string     `gorm:"type:varchar(20);not null;default:''" json:"division"`
	RollNumber string     `gorm:"type:varchar(40);not null;default:''" json:"roll_number"`
	Subjects   StringList `gorm:"type:text" json:"subjects"`
	BaseModel
}

// TableName table name.
func (User) TableName() string { return "users" }

// IsStudent reports whether the profile belongs to a student.
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
