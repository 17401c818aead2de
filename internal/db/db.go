package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE postgres reports for a broken unique index.
const uniqueViolation = "23505"

type Dentist struct {
	ID                 int64
	Name               string
	LastName           string
	RegistrationNumber string
	Specialty          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CreateDentistParams struct {
	Name               string
	LastName           string
	RegistrationNumber string
	Specialty          string
}

type UpdateDentistParams struct {
	ID                 int64
	Name               string
	LastName           string
	RegistrationNumber string
	Specialty          string
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries interface mimicking sqlc generated code
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Open connects to postgres with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS dentists (
	id                  BIGSERIAL PRIMARY KEY,
	name                TEXT NOT NULL,
	last_name           TEXT NOT NULL,
	registration_number TEXT NOT NULL,
	specialty           TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS dentists_registration_number_key ON dentists (registration_number);
`

// Migrate creates the dentists table when it does not exist yet.
func Migrate(ctx context.Context, conn DBTX) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const dentistColumns = "id, name, last_name, registration_number, specialty, created_at, updated_at"

func scanDentist(row interface{ Scan(dest ...any) error }) (Dentist, error) {
	var i Dentist
	err := row.Scan(&i.ID, &i.Name, &i.LastName, &i.RegistrationNumber, &i.Specialty, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (q *Queries) CreateDentist(ctx context.Context, arg CreateDentistParams) (Dentist, error) {
	row := q.db.QueryRowContext(ctx,
		"INSERT INTO dentists (name, last_name, registration_number, specialty) VALUES ($1, $2, $3, $4) RETURNING "+dentistColumns,
		arg.Name, arg.LastName, arg.RegistrationNumber, arg.Specialty,
	)
	return scanDentist(row)
}

func (q *Queries) GetDentist(ctx context.Context, id int64) (Dentist, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+dentistColumns+" FROM dentists WHERE id = $1", id)
	return scanDentist(row)
}

func (q *Queries) UpdateDentist(ctx context.Context, arg UpdateDentistParams) (Dentist, error) {
	row := q.db.QueryRowContext(ctx,
		"UPDATE dentists SET name = $2, last_name = $3, registration_number = $4, specialty = $5, updated_at = now() WHERE id = $1 RETURNING "+dentistColumns,
		arg.ID, arg.Name, arg.LastName, arg.RegistrationNumber, arg.Specialty,
	)
	return scanDentist(row)
}

// DeleteDentist returns the number of rows removed.
func (q *Queries) DeleteDentist(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM dentists WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListDentists(ctx context.Context) ([]Dentist, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+dentistColumns+" FROM dentists ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Dentist
	for rows.Next() {
		i, err := scanDentist(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
