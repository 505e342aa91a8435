package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type StatsRepository interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepo(db *sql.DB) StatsRepository {
	return &statsRepository{DB: db}
}

func (r *statsRepository) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	stats := &models.DashboardStats{BooksByStatus: map[models.BookStatus]int{}}

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.DB.QueryContext(dbCtx, `SELECT status, COUNT(*) FROM books GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.BookStatus
		var count int

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan book count: %w", err)
		}

		stats.BooksByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate book counts: %w", err)
	}

	orderQuery := `SELECT COUNT(*), COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0) FROM orders`
	if err := r.DB.QueryRowContext(dbCtx, orderQuery).Scan(&stats.Orders, &stats.PaidRevenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM events`).Scan(&stats.Events); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	return stats, nil
}
