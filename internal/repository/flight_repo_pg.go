package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, origin, destination, scheduled_at`

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxBeginner interface {
	pgxQuerier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PGFlightRepository struct {
	db pgxBeginner
}

func NewFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Save(ctx context.Context, f domain.Flight) (domain.Flight, error) {
	f.ScheduledAt = f.ScheduledAt.UTC()
	if f.IsNew() {
		err := r.db.QueryRow(ctx, `INSERT INTO flight (origin, destination, scheduled_at) VALUES ($1, $2, $3) RETURNING id`,
			f.Origin, f.Destination, f.ScheduledAt).Scan(&f.ID)
		if err != nil {
			return domain.Flight{}, fmt.Errorf("insert flight: %w", err)
		}
		return f, nil
	}

	res, err := r.db.Exec(ctx, `UPDATE flight SET origin=$1, destination=$2, scheduled_at=$3 WHERE id=$4`,
		f.Origin, f.Destination, f.ScheduledAt, f.ID)
	if err != nil {
		return domain.Flight{}, fmt.Errorf("update flight %d: %w", f.ID, err)
	}
	if res.RowsAffected() == 0 {
		return domain.Flight{}, domain.ErrFlightNotFound
	}
	return f, nil
}

func (r *PGFlightRepository) FindByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flight WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Origin, &f.Destination, &f.ScheduledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find flight %d: %w", id, err)
	}
	f.ScheduledAt = f.ScheduledAt.UTC()
	return &f, nil
}

func (r *PGFlightRepository) FindAll(ctx context.Context) ([]domain.Flight, error) {
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight ORDER BY id`)
}

func (r *PGFlightRepository) FindAllSorted(ctx context.Context, sort domain.Sort) ([]domain.Flight, error) {
	orderBy, err := orderByClause(sort)
	if err != nil {
		return nil, err
	}
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight ORDER BY `+orderBy)
}

func (r *PGFlightRepository) FindAllPage(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	return r.page(ctx, "", nil, req)
}

func (r *PGFlightRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flight`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

func (r *PGFlightRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM flight WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete flight %d: %w", id, err)
	}
	return nil
}

func (r *PGFlightRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM flight`); err != nil {
		return fmt.Errorf("delete all flights: %w", err)
	}
	return nil
}

func (r *PGFlightRepository) FindByOrigin(ctx context.Context, origin string) ([]domain.Flight, error) {
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight WHERE origin=$1 ORDER BY id`, origin)
}

func (r *PGFlightRepository) FindByOriginPage(ctx context.Context, origin string, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	return r.page(ctx, `origin=$1`, []any{origin}, req)
}

func (r *PGFlightRepository) FindByOriginAndDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight WHERE origin=$1 AND destination=$2 ORDER BY id`, origin, destination)
}

func (r *PGFlightRepository) FindByOriginIn(ctx context.Context, origins []string) ([]domain.Flight, error) {
	if len(origins) == 0 {
		return make([]domain.Flight, 0), nil
	}
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight WHERE origin = ANY($1) ORDER BY id`, origins)
}

func (r *PGFlightRepository) FindByOriginIgnoreCase(ctx context.Context, origin string) ([]domain.Flight, error) {
	return queryFlights(ctx, r.db, `SELECT `+flightColumns+` FROM flight WHERE lower(origin) = lower($1) ORDER BY id`, origin)
}

func (r *PGFlightRepository) DeleteByOrigin(ctx context.Context, origin string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM flight WHERE origin = $1`, origin); err != nil {
		return fmt.Errorf("delete flights from %q: %w", origin, err)
	}
	return nil
}

// page counts and slices in one read-only snapshot. where uses $1..$n for
// args; LIMIT and OFFSET take the next two placeholders.
func (r *PGFlightRepository) page(ctx context.Context, where string, args []any, req domain.PageRequest) (domain.Page[domain.Flight], error) {
	if err := req.Validate(); err != nil {
		return domain.Page[domain.Flight]{}, err
	}
	orderBy, err := orderByClause(req.Sort)
	if err != nil {
		return domain.Page[domain.Flight]{}, err
	}
	if where != "" {
		where = " WHERE " + where
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.Page[domain.Flight]{}, fmt.Errorf("begin page tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM flight`+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Flight]{}, fmt.Errorf("count flights: %w", err)
	}

	content := make([]domain.Flight, 0)
	if int64(req.Offset()) < total {
		n := len(args)
		sql := fmt.Sprintf(`SELECT %s FROM flight%s ORDER BY %s LIMIT $%d OFFSET $%d`, flightColumns, where, orderBy, n+1, n+2)
		content, err = queryFlights(ctx, tx, sql, append(args, req.Size, req.Offset())...)
		if err != nil {
			return domain.Page[domain.Flight]{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Page[domain.Flight]{}, fmt.Errorf("commit page tx: %w", err)
	}
	return domain.NewPage(content, req, total), nil
}

func queryFlights(ctx context.Context, db pgxQuerier, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.Origin, &f.Destination, &f.ScheduledAt); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		f.ScheduledAt = f.ScheduledAt.UTC()
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
