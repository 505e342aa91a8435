package service

import (
	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = utils.DefaultPageSize
	}

	if size > utils.MaxPageSize {
		size = utils.MaxPageSize
	}

	return page, size
}

// canAccess is true for the owner of a resource and for admins.
func canAccess(claims *models.Claims, ownerID uuid.UUID) bool {
	return claims != nil && (claims.UserID == ownerID || claims.IsAdmin())
}
