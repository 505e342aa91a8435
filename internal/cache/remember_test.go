package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/cache"
	"github.com/zenjaura/marketplace/internal/models"
)

func TestRemember(t *testing.T) {
	key := cache.Key(cache.PackageKeyPrefix, "standard")
	pkg := &models.Package{Name: "Standard", BasePrice: 399}

	t.Run("Hit - Loader not called", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setup(t)
		data, err := json.Marshal(pkg)
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(data))

		// Act
		got, err := cache.Remember(t.Context(), redisCache, key, 0, func(context.Context) (*models.Package, error) {
			t.Fatal("loader must not run on a hit")
			return nil, nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Standard", got.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss - Loads and stores", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setup(t)
		data, err := json.Marshal(pkg)
		require.NoError(t, err)
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, data, time.Minute).SetVal("OK")

		// Act
		got, err := cache.Remember(t.Context(), redisCache, key, time.Minute, func(context.Context) (*models.Package, error) {
			return pkg, nil
		})

		// Assert
		require.NoError(t, err)
		assert.Same(t, pkg, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Loader error is returned and nothing is stored", func(t *testing.T) {
		// Arrange
		redisCache, mock, _ := setup(t)
		loadErr := errors.New("not found")
		mock.ExpectGet(key).RedisNil()

		// Act
		_, err := cache.Remember(t.Context(), redisCache, key, time.Minute, func(context.Context) (*models.Package, error) {
			return nil, loadErr
		})

		// Assert
		require.ErrorIs(t, err, loadErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
