package handler

import "attendance-report/internal/service"

// Handler groups the HTTP handlers.
type Handler struct {
	User   *UserHandler
	Report *ReportHandler
}

// NewHandler creates the handler set.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		User:   NewUserHandler(svc.User),
		Report: NewReportHandler(svc.Report),
	}
}
