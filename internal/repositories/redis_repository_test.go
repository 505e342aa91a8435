package repository_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/config"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

// sameCommandAndKey ignores the time-dependent arguments of the sliding window commands.
func sameCommandAndKey(expected, actual []any) error {
	if len(expected) < 2 || len(actual) < 2 {
		return errors.New("command without key")
	}

	if fmt.Sprint(expected[0]) != fmt.Sprint(actual[0]) || fmt.Sprint(expected[1]) != fmt.Sprint(actual[1]) {
		return fmt.Errorf("expected %v, got %v", expected[:2], actual[:2])
	}

	return nil
}

func setupRateLimitTest(t *testing.T) (repository.RateLimitRepository, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	repo := repository.NewRateLimitRepo(client, &config.RateConfig{MaxAttempts: 3, WindowSize: 15 * time.Minute})

	return repo, mock
}

func expectWindow(mock redismock.ClientMock, key string, attempts int64) {
	mock.CustomMatch(sameCommandAndKey).ExpectZRemRangeByScore(key, "0", "0").SetVal(0)
	mock.CustomMatch(sameCommandAndKey).ExpectZAdd(key, redis.Z{}).SetVal(1)
	mock.ExpectZCard(key).SetVal(attempts)
	mock.ExpectExpire(key, 15*time.Minute).SetVal(true)
}

func TestRateLimitRepository_CheckLoginRateLimit(t *testing.T) {
	const email = "ada@example.com"
	key := "login_attempts:" + email

	t.Run("Allowed - Attempts remain", func(t *testing.T) {
		// Arrange
		repo, mock := setupRateLimitTest(t)
		expectWindow(mock, key, 2)

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(t.Context(), email)

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, remaining)
		assert.Zero(t, retryAfter)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Blocked - Window exhausted", func(t *testing.T) {
		// Arrange
		repo, mock := setupRateLimitTest(t)
		expectWindow(mock, key, 4)
		oldest := time.Now().Add(-time.Minute).Unix()
		mock.ExpectZRangeArgsWithScores(redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).
			SetVal([]redis.Z{{Score: float64(oldest), Member: "attempt"}})

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(t.Context(), email)

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.InDelta(t, 14*60, retryAfter, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis unavailable", func(t *testing.T) {
		// Arrange
		repo, mock := setupRateLimitTest(t)
		mock.CustomMatch(sameCommandAndKey).ExpectZRemRangeByScore(key, "0", "0").SetErr(errors.New("connection refused"))

		// Act
		allowed, _, _, err := repo.CheckLoginRateLimit(t.Context(), email)

		// Assert
		require.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestRateLimitRepository_ResetLoginAttempts(t *testing.T) {
	// Arrange
	repo, mock := setupRateLimitTest(t)
	mock.ExpectDel("login_attempts:ada@example.com").SetVal(1)

	// Act
	err := repo.ResetLoginAttempts(t.Context(), "ada@example.com")

	// Assert
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
