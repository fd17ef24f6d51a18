package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdata/internal/domain"
	"gorm.io/gorm"
)

// flightRecord is the gorm row model for the flight table.
type flightRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Origin      string    `gorm:"not null;index"`
	Destination string    `gorm:"not null"`
	ScheduledAt time.Time `gorm:"not null"`
}

func (flightRecord) TableName() string {
	return flightTable
}

func toRecord(f domain.Flight) flightRecord {
	return flightRecord{ID: f.ID, Origin: f.Origin, Destination: f.Destination, ScheduledAt: f.ScheduledAt.UTC()}
}

func (r flightRecord) toDomain() domain.Flight {
	return domain.Flight{ID: r.ID, Origin: r.Origin, Destination: r.Destination, ScheduledAt: r.ScheduledAt.UTC()}
}

func toDomainFlights(records []flightRecord) []domain.Flight {
	flights := make([]domain.Flight, 0, len(records))
	for _, rec := range records {
		flights = append(flights, rec.toDomain())
	}
	return flights
}

// pageTxOptions gives a page's count and slice one snapshot on Postgres.
// sqlite transactions are serializable regardless.
var pageTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// GormFlightRepository runs the flight store through gorm, so the same
// contract can sit on Postgres or sqlite.
type GormFlightRepository struct {
	db *gorm.DB
}

func NewGormFlightRepository(db *gorm.DB) *GormFlightRepository {
	return &GormFlightRepository{db: db}
}

// Migrate creates or updates the flight table.
func (r *GormFlightRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&flightRecord{})
}

func (r *GormFlightRepository) Save(ctx context.Context, f domain.Flight) (domain.Flight, error) {
	rec := toRecord(f)
	if f.IsNew() {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return domain.Flight{}, fmt.Errorf("insert flight: %w", err)
		}
		return rec.toDomain(), nil
	}

	res := r.db.WithContext(ctx).
		Model(&flightRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"origin":       rec.Origin,
			"destination":  rec.Destination,
			"scheduled_at": rec.ScheduledAt,
		})
	if res.Error != nil {
		return domain.Flight{}, fmt.Errorf("update flight %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Flight{}, domain.ErrFlightNotFound
	}
	return rec.toDomain(), nil
}

func (r *GormFlightRepository) FindByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var rec flightRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find flight %d: %w", id, err)
	}
	f := rec.toDomain()
	return &f, nil
}

func (r *GormFlightRepository) FindAll(ctx context.Context) ([]domain.Flight, error) {
	return r.find(r.db.WithContext(ctx).Order("id ASC"))
}

func (r *GormFlightRepository) FindAllSorted(ctx context.Context, sort domain.Sort) ([]domain.Flight, error) {
	orderBy, err := orderByClause(sort)
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Order(orderBy))
}

func (r *GormFlightRepository) FindAllPage(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	return r.page(ctx, req, func(tx *gorm.DB) *gorm.DB { return tx })
}

func (r *GormFlightRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&flightRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

func (r *GormFlightRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&flightRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete flight %d: %w", id, err)
	}
	return nil
}

func (r *GormFlightRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&flightRecord{}).Error; err != nil {
		return fmt.Errorf("delete all flights: %w", err)
	}
	return nil
}

func (r *GormFlightRepository) FindByOrigin(ctx context.Context, origin string) ([]domain.Flight, error) {
	return r.find(r.db.WithContext(ctx).Where("origin = ?", origin).Order("id ASC"))
}

func (r *GormFlightRepository) FindByOriginPage(ctx context.Context, origin string, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	return r.page(ctx, req, func(tx *gorm.DB) *gorm.DB { return tx.Where("origin = ?", origin) })
}

func (r *GormFlightRepository) FindByOriginAndDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return r.find(r.db.WithContext(ctx).
		Where("origin = ? AND destination = ?", origin, destination).
		Order("id ASC"))
}

func (r *GormFlightRepository) FindByOriginIn(ctx context.Context, origins []string) ([]domain.Flight, error) {
	if len(origins) == 0 {
		return make([]domain.Flight, 0), nil
	}
	return r.find(r.db.WithContext(ctx).Where("origin IN ?", origins).Order("id ASC"))
}

func (r *GormFlightRepository) FindByOriginIgnoreCase(ctx context.Context, origin string) ([]domain.Flight, error) {
	return r.find(r.db.WithContext(ctx).Where("LOWER(origin) = LOWER(?)", origin).Order("id ASC"))
}

// DeleteByOrigin removes every flight from origin in a single statement.
func (r *GormFlightRepository) DeleteByOrigin(ctx context.Context, origin string) error {
	if err := r.db.WithContext(ctx).Exec("DELETE FROM flight WHERE origin = ?", origin).Error; err != nil {
		return fmt.Errorf("delete flights from %q: %w", origin, err)
	}
	return nil
}

func (r *GormFlightRepository) find(q *gorm.DB) ([]domain.Flight, error) {
	var records []flightRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	return toDomainFlights(records), nil
}

func (r *GormFlightRepository) page(ctx context.Context, req domain.PageRequest, scope func(*gorm.DB) *gorm.DB) (domain.Page[domain.Flight], error) {
	if err := req.Validate(); err != nil {
		return domain.Page[domain.Flight]{}, err
	}
	orderBy, err := orderByClause(req.Sort)
	if err != nil {
		return domain.Page[domain.Flight]{}, err
	}

	var (
		total   int64
		records []flightRecord
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx.Model(&flightRecord{})).Count(&total).Error; err != nil {
			return fmt.Errorf("count flights: %w", err)
		}
		if int64(req.Offset()) >= total {
			return nil
		}
		return scope(tx.Model(&flightRecord{})).
			Order(orderBy).
			Limit(req.Size).
			Offset(req.Offset()).
			Find(&records).Error
	}, pageTxOptions)
	if err != nil {
		return domain.Page[domain.Flight]{}, fmt.Errorf("page flights: %w", err)
	}
	return domain.NewPage(toDomainFlights(records), req, total), nil
}

var _ FlightRepository = (*GormFlightRepository)(nil)
