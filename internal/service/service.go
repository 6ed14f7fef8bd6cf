package service

import (
	"go.uber.org/zap"

	"attendance-report/internal/report"
	"attendance-report/internal/repository"
	applogger "attendance-report/pkg/logger"
	"attendance-report/pkg/metrics"
)

// Service groups the business services.
type Service struct {
	User   UserService
	Report ReportService
	Import ImportService
}

// NewService wires the services onto the repositories.
func NewService(
	repo *repository.Repository,
	coord *report.Coordinator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		User:   NewUserService(repo, applogger.Component(logger, "user")),
		Report: NewReportService(repo, coord, m, applogger.Component(logger, "report")),
		Import: NewImportService(repo, applogger.Component(logger, "import")),
	}
}
