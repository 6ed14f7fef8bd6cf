package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "attendance-report/pkg/errors"
)

// Repository groups the data access interfaces.
type Repository struct {
	User    UserRepository
	Lecture LectureRepository
}

// NewRepository creates the GORM-backed Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:    NewUserRepo(db),
		Lecture: NewLectureRepo(db),
	}
}

// translate maps driver-level lookup misses onto pkg/errors.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ErrNotFound
	}
	return err
}
