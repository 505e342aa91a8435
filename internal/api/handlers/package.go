package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/models"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type PackageHandler struct {
	packageService service.PackageService
	validator      *validator.Validate
}

func NewPackageHandler(packageService service.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService, validator: validator.New()}
}

// ListPackages godoc
//
//	@Summary	List publishing packages
//	@Tags		Packages
//	@Produce	json
//	@Success	200	{array}		models.Package
//	@Failure	500	{object}	response.ErrorResponse	"Internal server error"
//	@Router		/packages [get]
func (h *PackageHandler) ListPackages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		packages, err := h.packageService.ListActivePackages(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list packages", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, packages)
	}
}

// GetPackage godoc
//
//	@Summary	Get a package
//	@Tags		Packages
//	@Produce	json
//	@Param		id	path		string	true	"Package ID"	Format(uuid)
//	@Success	200	{object}	models.Package
//	@Failure	404	{object}	response.ErrorResponse	"Package not found"
//	@Router		/packages/{id} [get]
func (h *PackageHandler) GetPackage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		pkg, err := h.packageService.GetPackage(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, pkg)
	}
}

// Quote godoc
//
//	@Summary		Price a customized package
//	@Description	Base price plus printed copies and pages above the included amounts.
//	@Tags			Packages
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string						true	"Package ID"	Format(uuid)
//	@Param			customization	body		models.PackageCustomization	true	"Requested copies and pages"
//	@Success		200				{object}	models.QuoteResponse
//	@Failure		400				{object}	response.ErrorResponse	"Validation error"
//	@Failure		404				{object}	response.ErrorResponse	"Package not found"
//	@Router			/packages/{id}/quote [post]
func (h *PackageHandler) Quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.PackageCustomization
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		quote, err := h.packageService.Quote(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, quote)
	}
}

// CreatePackage godoc
//
//	@Summary	Create a package
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		package	body		models.CreatePackageRequest	true	"Package definition"
//	@Success	201		{object}	models.Package
//	@Failure	400		{object}	response.ErrorResponse	"Validation error"
//	@Failure	409		{object}	response.ErrorResponse	"Name already taken"
//	@Security	BearerAuth
//	@Router		/admin/packages [post]
func (h *PackageHandler) CreatePackage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreatePackageRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		pkg, err := h.packageService.CreatePackage(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create package", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Package created", slog.String("packageId", pkg.ID.String()))
		response.Success(w, http.StatusCreated, pkg)
	}
}

// UpdatePackage godoc
//
//	@Summary	Update a package
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Package ID"	Format(uuid)
//	@Param		package	body		models.UpdatePackageRequest	true	"Package definition"
//	@Success	200		{object}	models.Package
//	@Failure	404		{object}	response.ErrorResponse	"Package not found"
//	@Security	BearerAuth
//	@Router		/admin/packages/{id} [put]
func (h *PackageHandler) UpdatePackage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdatePackageRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		pkg, err := h.packageService.UpdatePackage(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update package", slog.String("packageId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, pkg)
	}
}

// DeactivatePackage godoc
//
//	@Summary		Retire a package
//	@Description	Soft delete. Existing carts and orders keep their lines.
//	@Tags			Admin
//	@Param			id	path	string	true	"Package ID"	Format(uuid)
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse	"Package not found"
//	@Security		BearerAuth
//	@Router			/admin/packages/{id} [delete]
func (h *PackageHandler) DeactivatePackage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		_, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.packageService.DeactivatePackage(r.Context(), id); err != nil {
			logger.Error("Failed to deactivate package", slog.String("packageId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Package deactivated", slog.String("packageId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
