package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils"
)

type PackageRepository interface {
	CreatePackage(ctx context.Context, pkg *models.Package) error
	GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, pkg *models.Package) error
	DeactivatePackage(ctx context.Context, id uuid.UUID) error
}

type packageRepository struct {
	DB *sql.DB
}

func NewPackageRepo(db *sql.DB) PackageRepository {
	return &packageRepository{DB: db}
}

const packageColumns = `id, name, description, base_price, features, printed_base_quantity, printed_price_per_unit,
	pages_base_included, pages_price_per_page, is_active, created_at, updated_at`

func scanPackage(scanner interface{ Scan(dest ...any) error }) (*models.Package, error) {
	pkg := &models.Package{}

	var features pq.StringArray

	err := scanner.Scan(&pkg.ID, &pkg.Name, &pkg.Description, &pkg.BasePrice, &features,
		&pkg.AddOns.PrintedCopies.BaseQuantity, &pkg.AddOns.PrintedCopies.PricePerUnit,
		&pkg.AddOns.ExtraPages.BasePagesIncluded, &pkg.AddOns.ExtraPages.PricePerPage,
		&pkg.IsActive, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	pkg.Features = []string(features)
	if pkg.Features == nil {
		pkg.Features = []string{}
	}

	return pkg, nil
}

func (r *packageRepository) CreatePackage(ctx context.Context, pkg *models.Package) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO packages (id, name, description, base_price, features, printed_base_quantity, printed_price_per_unit,
			pages_base_included, pages_price_per_page, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, pkg.ID, pkg.Name, pkg.Description, pkg.BasePrice, pq.Array(pkg.Features),
		pkg.AddOns.PrintedCopies.BaseQuantity, pkg.AddOns.PrintedCopies.PricePerUnit,
		pkg.AddOns.ExtraPages.BasePagesIncluded, pkg.AddOns.ExtraPages.PricePerPage,
		pkg.IsActive).Scan(&pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("package %s: %w", pkg.Name, ErrDuplicate)
		}

		return fmt.Errorf("failed to create package: %w", err)
	}

	return nil
}

func (r *packageRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	pkg, err := scanPackage(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	return pkg, nil
}

func (r *packageRepository) ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY base_price ASC`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	packages := []*models.Package{}

	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}

		packages = append(packages, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate packages: %w", err)
	}

	return packages, nil
}

func (r *packageRepository) UpdatePackage(ctx context.Context, pkg *models.Package) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE packages
		SET name = $1, description = $2, base_price = $3, features = $4, printed_base_quantity = $5,
			printed_price_per_unit = $6, pages_base_included = $7, pages_price_per_page = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, pkg.Name, pkg.Description, pkg.BasePrice, pq.Array(pkg.Features),
		pkg.AddOns.PrintedCopies.BaseQuantity, pkg.AddOns.PrintedCopies.PricePerUnit,
		pkg.AddOns.ExtraPages.BasePagesIncluded, pkg.AddOns.ExtraPages.PricePerPage,
		pkg.IsActive, pkg.ID).Scan(&pkg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("package %s: %w", pkg.ID, ErrNotFound)
		}

		return fmt.Errorf("failed to update package: %w", err)
	}

	return nil
}

func (r *packageRepository) DeactivatePackage(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `UPDATE packages SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("package %s: %w", id, ErrNotFound)
	}

	return nil
}
