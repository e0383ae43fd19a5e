package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository   = (*Repository)(nil)
	_ repository.OfficeRepository = (*Repository)(nil)
	_ repository.WorkerRepository = (*Repository)(nil)
	_ repository.Store            = (*Repository)(nil)
)

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	return mapError(err)
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapLookupError(err)
	}
	return &u, nil
}

const officeColumns = `id, owner_id, name, location, capacity, color, email, COALESCE(phone, ''), created_at`

// CreateOffice inserts an office.
func (r *Repository) CreateOffice(ctx context.Context, office *domain.Office) error {
	const query = `INSERT INTO offices (id, owner_id, name, location, capacity, color, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		office.ID,
		office.OwnerID,
		office.Name,
		office.Location,
		office.Capacity,
		office.Color,
		office.Email,
		nilIfEmpty(office.Phone),
		office.CreatedAt,
	)
	return mapError(err)
}

// GetOffice returns the office only when it belongs to ownerID.
func (r *Repository) GetOffice(ctx context.Context, ownerID, officeID string) (*domain.Office, error) {
	const query = `SELECT ` + officeColumns + ` FROM offices WHERE id = $1 AND owner_id = $2`
	var office domain.Office
	if err := scanOffice(r.pool.QueryRow(ctx, query, officeID, ownerID), &office); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapLookupError(err)
	}
	return &office, nil
}

// ListOfficesByOwner returns the owner's offices, newest first.
func (r *Repository) ListOfficesByOwner(ctx context.Context, ownerID string) ([]domain.Office, error) {
	const query = `SELECT ` + officeColumns + ` FROM offices WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	offices := make([]domain.Office, 0)
	for rows.Next() {
		var office domain.Office
		if err := scanOffice(rows, &office); err != nil {
			return nil, err
		}
		offices = append(offices, office)
	}
	return offices, rows.Err()
}

// DeleteOffice removes an office owned by ownerID.
func (r *Repository) DeleteOffice(ctx context.Context, ownerID, officeID string) error {
	const query = `DELETE FROM offices WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, officeID, ownerID)
	if err != nil {
		return mapLookupError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountWorkers counts workers assigned to an office.
func (r *Repository) CountWorkers(ctx context.Context, officeID string) (int, error) {
	const query = `SELECT COUNT(1) FROM workers WHERE office_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, officeID).Scan(&count); err != nil {
		return 0, mapLookupError(err)
	}
	return count, nil
}

const workerColumns = `id, office_id, owner_id, name, position, email, COALESCE(avatar_url, ''), created_at`

// CreateWorker inserts a worker. The office row is locked while its
// headcount is compared with capacity so concurrent inserts cannot overshoot.
func (r *Repository) CreateWorker(ctx context.Context, worker *domain.Worker) error {
	const (
		lockOffice = `SELECT capacity FROM offices WHERE id = $1 FOR UPDATE`
		count      = `SELECT COUNT(1) FROM workers WHERE office_id = $1`
		insert     = `INSERT INTO workers (id, office_id, owner_id, name, position, email, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	)
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var capacity int
		if err := tx.QueryRow(ctx, lockOffice, worker.OfficeID).Scan(&capacity); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return mapLookupError(err)
		}
		var current int
		if err := tx.QueryRow(ctx, count, worker.OfficeID).Scan(&current); err != nil {
			return mapLookupError(err)
		}
		if current >= capacity {
			return repository.ErrCapacity
		}
		_, err := tx.Exec(ctx, insert,
			worker.ID,
			worker.OfficeID,
			worker.OwnerID,
			worker.Name,
			worker.Position,
			worker.Email,
			nilIfEmpty(worker.AvatarURL),
			worker.CreatedAt,
		)
		return mapError(err)
	})
}

// GetWorker fetches a worker within an office.
func (r *Repository) GetWorker(ctx context.Context, officeID, workerID string) (*domain.Worker, error) {
	const query = `SELECT ` + workerColumns + ` FROM workers WHERE id = $1 AND office_id = $2`
	var worker domain.Worker
	if err := scanWorker(r.pool.QueryRow(ctx, query, workerID, officeID), &worker); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapLookupError(err)
	}
	return &worker, nil
}

// ListWorkersByOffice returns workers for the office, newest first.
func (r *Repository) ListWorkersByOffice(ctx context.Context, officeID string) ([]domain.Worker, error) {
	const query = `SELECT ` + workerColumns + ` FROM workers WHERE office_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, officeID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	defer rows.Close()

	workers := make([]domain.Worker, 0)
	for rows.Next() {
		var worker domain.Worker
		if err := scanWorker(rows, &worker); err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}
	return workers, rows.Err()
}

// UpdateWorker rewrites name, position and email. Other columns are immutable here.
func (r *Repository) UpdateWorker(ctx context.Context, worker *domain.Worker) error {
	const query = `UPDATE workers SET name = $3, position = $4, email = $5
		WHERE id = $1 AND office_id = $2`
	tag, err := r.pool.Exec(ctx, query, worker.ID, worker.OfficeID, worker.Name, worker.Position, worker.Email)
	if err != nil {
		return mapLookupError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteWorker removes a worker from an office.
func (r *Repository) DeleteWorker(ctx context.Context, officeID, workerID string) error {
	const query = `DELETE FROM workers WHERE id = $1 AND office_id = $2`
	tag, err := r.pool.Exec(ctx, query, workerID, officeID)
	if err != nil {
		return mapLookupError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanOffice(row pgx.Row, office *domain.Office) error {
	return row.Scan(
		&office.ID,
		&office.OwnerID,
		&office.Name,
		&office.Location,
		&office.Capacity,
		&office.Color,
		&office.Email,
		&office.Phone,
		&office.CreatedAt,
	)
}

func scanWorker(row pgx.Row, worker *domain.Worker) error {
	return row.Scan(
		&worker.ID,
		&worker.OfficeID,
		&worker.OwnerID,
		&worker.Name,
		&worker.Position,
		&worker.Email,
		&worker.AvatarURL,
		&worker.CreatedAt,
	)
}

// mapError translates PostgreSQL error codes into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repository.ErrConflict
		case "23503":
			return repository.ErrNotFound
		case "23514", "22P02", "23502":
			return repository.ErrInvalidArgument
		}
	}
	return err
}

// mapLookupError treats malformed identifiers as missing rows.
func mapLookupError(err error) error {
	mapped := mapError(err)
	if errors.Is(mapped, repository.ErrInvalidArgument) {
		return repository.ErrNotFound
	}
	return mapped
}

func nilIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
