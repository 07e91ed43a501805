package port

import (
	"context"

	"roomfinder/internal/core/domain"
)

// GeographyPort - справочник административного деления (только чтение, каскадно).
type GeographyPort interface {
	Provinces(ctx context.Context) ([]domain.Place, error)
	Districts(ctx context.Context, provinceCode int) ([]domain.Place, error)
	Wards(ctx context.Context, districtCode int) ([]domain.Place, error)
}
