package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zenjaura/marketplace/internal/api/handlers"
	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/services/mocks"
	"github.com/zenjaura/marketplace/internal/testutils"
)

func TestNotificationHandler_ListNotifications(t *testing.T) {
	// Arrange
	notificationService := new(mocks.NotificationService)
	handler := handlers.NewNotificationHandler(notificationService)
	userID := uuid.New()

	expectedFilter := models.NotificationFilter{UserID: userID, UnreadOnly: true, Page: 1, PageSize: 10}
	notificationService.On("ListNotifications", mock.Anything, expectedFilter).Return([]*models.Notification{
		{ID: uuid.New(), UserID: userID, Title: "Order paid", Type: models.NotificationTypeSuccess},
	}, 1, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/notifications?unread=true", nil, userID, models.RoleUser, nil)
	rr := httptest.NewRecorder()

	// Act
	handler.ListNotifications().ServeHTTP(rr, req)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.PaginatedResponse
	testutils.DecodeData(t, rr.Body.Bytes(), &got)
	assert.Equal(t, 1, got.Total)
	notificationService.AssertExpectations(t)
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	t.Run("Own notification", func(t *testing.T) {
		notificationService := new(mocks.NotificationService)
		handler := handlers.NewNotificationHandler(notificationService)

		notificationService.On("MarkAsRead", mock.Anything, id, userID).Return(nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/notifications/"+id.String()+"/read", nil, userID, models.RoleUser,
			map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		handler.MarkAsRead().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("Not found", func(t *testing.T) {
		notificationService := new(mocks.NotificationService)
		handler := handlers.NewNotificationHandler(notificationService)

		notificationService.On("MarkAsRead", mock.Anything, id, userID).Return(appErrors.NotFoundError("Notification not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/notifications/"+id.String()+"/read", nil, userID, models.RoleUser,
			map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		handler.MarkAsRead().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestNotificationHandler_MarkAllAsRead(t *testing.T) {
	notificationService := new(mocks.NotificationService)
	handler := handlers.NewNotificationHandler(notificationService)
	userID := uuid.New()

	notificationService.On("MarkAllAsRead", mock.Anything, userID).Return(int64(4), nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/notifications/read-all", nil, userID, models.RoleUser, nil)
	rr := httptest.NewRecorder()

	handler.MarkAllAsRead().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]int64
	testutils.DecodeData(t, rr.Body.Bytes(), &got)
	assert.Equal(t, int64(4), got["updated"])
}

func TestNotificationHandler_DeleteNotification(t *testing.T) {
	notificationService := new(mocks.NotificationService)
	handler := handlers.NewNotificationHandler(notificationService)
	userID, id := uuid.New(), uuid.New()

	notificationService.On("DeleteNotification", mock.Anything, id, userID).Return(nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/notifications/"+id.String(), nil, userID, models.RoleUser,
		map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	handler.DeleteNotification().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	notificationService.AssertExpectations(t)
}
