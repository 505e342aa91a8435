package service

import (
	"context"

	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

type AdminService interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type adminService struct {
	repo repository.StatsRepository
}

func NewAdminService(repo repository.StatsRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {

	stats, err := s.repo.GetDashboardStats(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch dashboard stats").WithError(err)
	}

	return stats, nil
}
