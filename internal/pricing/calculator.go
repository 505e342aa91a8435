// Package pricing prices publishing packages and their add-ons.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/zenjaura/marketplace/internal/models"
)

// CalculateDecimal returns the base price plus the add-on charges above the
// free baselines. A nil customization yields the base price.
func CalculateDecimal(pkg *models.Package, c *models.PackageCustomization) decimal.Decimal {
	total := decimal.NewFromFloat(pkg.BasePrice)
	if c == nil {
		return total
	}

	copies := pkg.AddOns.PrintedCopies
	if extra := c.PrintedCopies - copies.BaseQuantity; extra > 0 {
		total = total.Add(decimal.NewFromFloat(copies.PricePerUnit).Mul(decimal.NewFromInt(int64(extra))))
	}

	pages := pkg.AddOns.ExtraPages
	if extra := c.TotalPages - pages.BasePagesIncluded; extra > 0 {
		total = total.Add(decimal.NewFromFloat(pages.PricePerPage).Mul(decimal.NewFromInt(int64(extra))))
	}

	return total.Round(2)
}

func Calculate(pkg *models.Package, c *models.PackageCustomization) float64 {
	return CalculateDecimal(pkg, c).InexactFloat64()
}
