package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-report/internal/model"
)

// LectureRepository reads lecture records and their attendance markers.
type LectureRepository interface {
	// ListByTeacher returns the teacher's lectures with attendees preloaded,
	// ordered by lecture_id. No lectures is an empty slice, not an error.
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Lecture, error)
	// ListSemesters returns the distinct semesters the teacher has lectured, ascending.
	ListSemesters(ctx context.Context, teacherID string) ([]int, error)
	// Upsert is used by the importer only.
	Upsert(ctx context.Context, lectures []model.Lecture) error
}

type lectureRepo struct {
	db *gorm.DB
}

// NewLectureRepo creates a LectureRepository.
func NewLectureRepo(db *gorm.DB) LectureRepository {
	return &lectureRepo{db: db}
}

func (r *lectureRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.db.WithContext(ctx).
		Preload("Attendees", func(db *gorm.DB) *gorm.DB {
			return db.Order("student_id ASC")
		}).
		Where("teacher_id = ?", teacherID).
		Order("lecture_id ASC").
		Find(&lectures).Error
	if err != nil {
		return nil, err
	}
	return lectures, nil
}

func (r *lectureRepo) ListSemesters(ctx context.Context, teacherID string) ([]int, error) {
	var semesters []int
	err := r.db.WithContext(ctx).
		Model(&model.Lecture{}).
		Where("teacher_id = ?", teacherID).
		Distinct("semester").
		Order("semester ASC").
		Pluck("semester", &semesters).Error
	if err != nil {
		return nil, err
	}
	return semesters, nil
}

// Upsert writes lectures and replaces each lecture's attendee set.
func (r *lectureRepo) Upsert(ctx context.Context, lectures []model.Lecture) error {
	if len(lectures) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lectures {
			l := lectures[i]
			attendees := l.Attendees
			l.Attendees = nil

			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&l).Error; err != nil {
				return err
			}
			if err := tx.Where("lecture_id = ?", l.LectureID).Delete(&model.LectureAttendee{}).Error; err != nil {
				return err
			}
			if len(attendees) == 0 {
				continue
			}
			for j := range attendees {
				attendees[j].LectureID = l.LectureID
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&attendees).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
