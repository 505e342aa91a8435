package repository_test

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/models"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

func TestStatsRepository_GetDashboardStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewStatsRepo(db)

	// Arrange
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) FROM books GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 3).AddRow("published", 9))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(7, 1234.5))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM events`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	// Act
	stats, err := repo.GetDashboardStats(t.Context())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, stats.Users)
	assert.Equal(t, 9, stats.BooksByStatus[models.BookStatusPublished])
	assert.Equal(t, 7, stats.Orders)
	assert.InDelta(t, 1234.5, stats.PaidRevenue, 0.001)
	assert.Equal(t, 2, stats.Events)
	require.NoError(t, mock.ExpectationsWereMet())
}
