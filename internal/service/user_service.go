package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"attendance-report/internal/dto"
	"attendance-report/internal/repository"
	pkgerrors "attendance-report/pkg/errors"
)

// ── User errors ──

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserService reads profiles of authenticated users.
type UserService interface {
	GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load current user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	subjects := []string(user.Subjects)
	if subjects == nil {
		subjects = []string{}
	}
	return &dto.CurrentUserResponse{
		ID:       user.UserID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Subjects: subjects,
	}, nil
}
