package service

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zenjaura/marketplace/internal/cache"
	"github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/pricing"
	repository "github.com/zenjaura/marketplace/internal/repositories"
)

type PackageService interface {
	ListActivePackages(ctx context.Context) ([]*models.Package, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	Quote(ctx context.Context, id uuid.UUID, customization *models.PackageCustomization) (*models.QuoteResponse, error)
	CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, req *models.UpdatePackageRequest) (*models.Package, error)
	DeactivatePackage(ctx context.Context, id uuid.UUID) error
}

type packageService struct {
	repo     repository.PackageRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewPackageService(repo repository.PackageRepository, c cache.Cache, cacheTTL time.Duration) PackageService {
	return &packageService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

func (s *packageService) ListActivePackages(ctx context.Context) ([]*models.Package, error) {

	packages, err := cache.Remember(ctx, s.cache, cache.ActivePackagesKey, s.cacheTTL, func(ctx context.Context) ([]*models.Package, error) {
		return s.repo.ListPackages(ctx, true)
	})
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch packages").WithError(err)
	}

	return packages, nil
}

func (s *packageService) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {

	pkg, err := cache.Remember(ctx, s.cache, cache.Key(cache.PackageKeyPrefix, id.String()), s.cacheTTL, func(ctx context.Context) (*models.Package, error) {
		return s.repo.GetPackageByID(ctx, id)
	})
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Package not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch package").WithError(err)
	}

	if !pkg.IsActive {
		return nil, errors.NotFoundError("Package not found")
	}

	return pkg, nil
}

func (s *packageService) Quote(ctx context.Context, id uuid.UUID, customization *models.PackageCustomization) (*models.QuoteResponse, error) {

	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.QuoteResponse{
		PackageID:     pkg.ID,
		Customization: customization,
		Price:         pricing.Calculate(pkg, customization),
	}, nil
}

func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))

	for _, feature := range features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

func (s *packageService) CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error) {

	pkg := &models.Package{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Features:    normalizeFeatures(req.Features),
		AddOns:      req.AddOns,
		IsActive:    true,
	}

	if err := s.repo.CreatePackage(ctx, pkg); err != nil {
		if stdErrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.DuplicateEntryError("A package with this name already exists").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create package").WithError(err)
	}

	cache.Invalidate(ctx, s.cache, cache.ActivePackagesKey)

	return pkg, nil
}

func (s *packageService) UpdatePackage(ctx context.Context, id uuid.UUID, req *models.UpdatePackageRequest) (*models.Package, error) {

	pkg, err := s.repo.GetPackageByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Package not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch package").WithError(err)
	}

	pkg.Name = strings.TrimSpace(req.Name)
	pkg.Description = req.Description
	pkg.BasePrice = req.BasePrice
	pkg.Features = normalizeFeatures(req.Features)
	pkg.AddOns = req.AddOns

	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}

	if err := s.repo.UpdatePackage(ctx, pkg); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Package not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update package").WithError(err)
	}

	cache.Invalidate(ctx, s.cache, cache.Key(cache.PackageKeyPrefix, id.String()), cache.ActivePackagesKey)

	return pkg, nil
}

func (s *packageService) DeactivatePackage(ctx context.Context, id uuid.UUID) error {

	if err := s.repo.DeactivatePackage(ctx, id); err != nil {
		if stdErrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Package not found").WithError(err)
		}

		return errors.DatabaseError("Failed to deactivate package").WithError(err)
	}

	cache.Invalidate(ctx, s.cache, cache.Key(cache.PackageKeyPrefix, id.String()), cache.ActivePackagesKey)

	return nil
}
