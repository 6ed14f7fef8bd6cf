package service

import (
	"context"
	"sort"
	"sync"

	"attendance-report/internal/model"
	"attendance-report/internal/repository"
	pkgerrors "attendance-report/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	listErr   error
	getErr    error
	upsertErr error
	calls     int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(users ...model.User) {
	for i := range users {
		u := users[i]
		m.users[u.UserID] = &u
	}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, users []model.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.add(users...)
	return nil
}

// ── Mock LectureRepository ──

type mockLectureRepo struct {
	lectures []model.Lecture
	listErr  error
	semErr   error
	// block, when set, makes ListByTeacher wait for it or for ctx.
	block chan struct{}
	// entered is closed once a blocked call has started.
	entered chan struct{}
}

func newMockLectureRepo() *mockLectureRepo {
	return &mockLectureRepo{}
}

func (m *mockLectureRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Lecture, error) {
	block, entered := m.block, m.entered
	if block != nil {
		if entered != nil {
			m.entered = nil
			close(entered)
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Lecture
	for _, l := range m.lectures {
		if l.TeacherID == teacherID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLectureRepo) ListSemesters(_ context.Context, teacherID string) ([]int, error) {
	if m.semErr != nil {
		return nil, m.semErr
	}
	seen := map[int]bool{}
	var out []int
	for _, l := range m.lectures {
		if l.TeacherID == teacherID && !seen[l.Semester] {
			seen[l.Semester] = true
			out = append(out, l.Semester)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *mockLectureRepo) Upsert(_ context.Context, lectures []model.Lecture) error {
	m.lectures = append(m.lectures, lectures...)
	return nil
}

// ── Fixtures ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockLectureRepo) {
	users := newMockUserRepo()
	lectures := newMockLectureRepo()
	return &repository.Repository{User: users, Lecture: lectures}, users, lectures
}

func fixtureLecture(id, teacherID, subject string, semester int, present ...string) model.Lecture {
	l := model.Lecture{LectureID: id, TeacherID: teacherID, Subject: subject, Semester: semester}
	for _, s := range present {
		l.Attendees = append(l.Attendees, model.LectureAttendee{LectureID: id, StudentID: s})
	}
	return l
}

func fixtureStudent(id, name string) model.User {
	return model.User{UserID: id, Role: model.RoleStudent, Name: name, Semester: 3, Division: "B", RollNumber: id}
}
