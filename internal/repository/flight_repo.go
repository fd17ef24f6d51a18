package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdata/internal/domain"
)

// FlightRepository is the record store for flights. Queries without an
// explicit sort return rows in creation order.
type FlightRepository interface {
	Save(ctx context.Context, flight domain.Flight) (domain.Flight, error)
	FindByID(ctx context.Context, id int64) (*domain.Flight, error)
	FindAll(ctx context.Context) ([]domain.Flight, error)
	FindAllSorted(ctx context.Context, sort domain.Sort) ([]domain.Flight, error)
	FindAllPage(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Flight], error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error

	FindByOrigin(ctx context.Context, origin string) ([]domain.Flight, error)
	FindByOriginPage(ctx context.Context, origin string, req domain.PageRequest) (domain.Page[domain.Flight], error)
	FindByOriginAndDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FindByOriginIn(ctx context.Context, origins []string) ([]domain.Flight, error)
	FindByOriginIgnoreCase(ctx context.Context, origin string) ([]domain.Flight, error)
	DeleteByOrigin(ctx context.Context, origin string) error
}

const flightTable = "flight"

// sortColumns maps sortable Flight properties to their columns. Anything not
// listed here never reaches SQL.
var sortColumns = map[string]string{
	"id":          "id",
	"origin":      "origin",
	"destination": "destination",
	"scheduledAt": "scheduled_at",
}

// orderByClause renders s as an ORDER BY list without the keyword. id ASC
// is always appended so equal keys keep creation order.
func orderByClause(s domain.Sort) (string, error) {
	parts := make([]string, 0, len(s)+1)
	for _, o := range s {
		col, ok := sortColumns[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrUnknownSortField, o.Property)
		}
		dir := o.Direction
		if dir == "" {
			dir = domain.ASC
		}
		if dir != domain.ASC && dir != domain.DESC {
			return "", fmt.Errorf("invalid sort direction %q", dir)
		}
		parts = append(parts, col+" "+string(dir))
		if col == "id" {
			return strings.Join(parts, ", "), nil
		}
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}
