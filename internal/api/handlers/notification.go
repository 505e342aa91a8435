package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zenjaura/marketplace/internal/models"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
//
//	@Summary	List the caller's notifications
//	@Tags		Notifications
//	@Produce	json
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		pageSize	query		int		false	"Page size"		default(10)
//	@Param		unread		query		bool	false	"Only unread notifications"
//	@Success	200			{object}	models.PaginatedResponse{data=[]models.Notification}
//	@Failure	401			{object}	response.ErrorResponse	"Authentication required"
//	@Security	BearerAuth
//	@Router		/notifications [get]
func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)
		unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

		notifications, total, err := h.notificationService.ListNotifications(r.Context(), models.NotificationFilter{
			UserID:     claims.UserID,
			UnreadOnly: unread,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			logger.Error("Failed to list notifications", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(notifications, total, page, pageSize))
	}
}

// MarkAsRead godoc
//
//	@Summary	Mark a notification as read
//	@Tags		Notifications
//	@Param		id	path	string	true	"Notification ID"	Format(uuid)
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse	"Notification not found"
//	@Security	BearerAuth
//	@Router		/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.notificationService.MarkAsRead(r.Context(), id, claims.UserID); err != nil {
			logger.Warn("Failed to mark notification as read", slog.String("notificationId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkAllAsRead godoc
//
//	@Summary	Mark every notification as read
//	@Tags		Notifications
//	@Produce	json
//	@Success	200	{object}	map[string]int64
//	@Security	BearerAuth
//	@Router		/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		updated, err := h.notificationService.MarkAllAsRead(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to mark notifications as read", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]int64{"updated": updated})
	}
}

// DeleteNotification godoc
//
//	@Summary	Delete a notification
//	@Tags		Notifications
//	@Param		id	path	string	true	"Notification ID"	Format(uuid)
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse	"Notification not found"
//	@Security	BearerAuth
//	@Router		/notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.notificationService.DeleteNotification(r.Context(), id, claims.UserID); err != nil {
			logger.Warn("Failed to delete notification", slog.String("notificationId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
