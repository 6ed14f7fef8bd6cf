package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lecture is one teaching session, table lectures.
// Rows are written by the lecture workflow; the report path only reads them.
type Lecture struct {
	LectureID string    `gorm:"type:varchar(64);primaryKey" json:"lecture_id"`
	TeacherID string    `gorm:"type:varchar(64);not null;index" json:"teacher_id"`
	Subject   string    `gorm:"type:varchar(100);not null" json:"subject"`
	Semester  int       `gorm:"not null" json:"semester"`
	StartedAt time.Time `gorm:"not null" json:"started_at"`
	BaseModel

	Attendees []LectureAttendee `gorm:"foreignKey:LectureID;references:LectureID" json:"attendees,omitempty"`
}

// TableName table name.
func (Lecture) TableName() string { return "lectures" }

// BeforeCreate assigns a key when the importer did not supply one.
func (l *Lecture) BeforeCreate(_ *gorm.DB) error {
	if l.LectureID == "" {
		l.LectureID = uuid.NewString()
	}
	if l.StartedAt.IsZero() {
		l.StartedAt = time.Now()
	}
	return nil
}

// PresentStudentIDs returns the ids marked present, in stored order.
func (l *Lecture) PresentStudentIDs() []string {
	ids := make([]string, 0, len(l.Attendees))
	for _, a := range l.Attendees {
		ids = append(ids, a.StudentID)
	}
	return ids
}

// LectureAttendee marks one student present in one lecture, table lecture_attendees.
type LectureAttendee struct {
	LectureID string `gorm:"type:varchar(64);primaryKey" json:"lecture_id"`
	StudentID string `gorm:"type:varchar(64);primaryKey;index" json:"student_id"`
}

// TableName table name.
func (LectureAttendee) TableName() string { return "lecture_attendees" }
