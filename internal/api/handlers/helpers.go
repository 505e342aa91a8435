package handlers

import (
	"log/slog"
	"net/http"

	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

// authenticated returns the caller's claims and a logger tagged with the user id.
// It writes a 401 and returns false when the request carries no claims.
func authenticated(w http.ResponseWriter, r *http.Request) (*models.Claims, *slog.Logger, bool) {

	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthorized access attempt: missing user claims")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, logger, false
	}

	return claims, logger.With(slog.String("userID", claims.UserID.String())), true
}

func paginated(data any, total, page, pageSize int) *models.PaginatedResponse {
	return &models.PaginatedResponse{Data: data, Total: total, Page: page, PageSize: pageSize}
}
