// internal/snapshot/postgres.go
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gymnexus/internal/membership"
)

// PostgresStore keeps named snapshots in a single table. Saving under an
// existing name replaces that snapshot.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("gymnexus/snapshot"),
		now:    time.Now,
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS registry_snapshots (
			name TEXT PRIMARY KEY,
			snapshot_id UUID NOT NULL,
			format_version INT NOT NULL,
			member_count INT NOT NULL,
			payload BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Save stores the registry under name; the name is the returned location.
func (ps *PostgresStore) Save(ctx context.Context, name string, members []membership.Member) (string, error) {
	name = strings.TrimSpace(name)
	ctx, span := ps.tracer.Start(ctx, "snapshot.save",
		trace.WithAttributes(
			attribute.String("snapshot.name", name),
			attribute.Int("snapshot.members", len(members)),
		),
	)
	defer span.End()

	header, data, err := Encode(members, ps.now())
	if err != nil {
		return "", err
	}

	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO registry_snapshots (name, snapshot_id, format_version, member_count, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET snapshot_id = EXCLUDED.snapshot_id,
		    format_version = EXCLUDED.format_version,
		    member_count = EXCLUDED.member_count,
		    payload = EXCLUDED.payload,
		    created_at = EXCLUDED.created_at
	`, name, header.ID, header.Version, header.Count, data, header.CreatedAt)
	if err != nil {
		return "", describePQError("save snapshot", err)
	}

	span.SetAttributes(attribute.String("snapshot.id", header.ID.String()))
	return name, nil
}

// Load reads the snapshot stored under location.
func (ps *PostgresStore) Load(ctx context.Context, location string) ([]membership.Member, error) {
	ctx, span := ps.tracer.Start(ctx, "snapshot.load",
		trace.WithAttributes(attribute.String("snapshot.name", location)),
	)
	defer span.End()

	var data []byte
	err := ps.db.QueryRowContext(ctx, `
		SELECT payload
		FROM registry_snapshots
		WHERE name = $1
	`, location).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, location)
	}
	if err != nil {
		return nil, describePQError("load snapshot", err)
	}

	header, members, err := Decode(data)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("snapshot.id", header.ID.String()),
		attribute.Int("snapshot.members", header.Count),
	)
	return members, nil
}

func describePQError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "42P01" {
			return fmt.Errorf("%s: snapshot table missing, run EnsureSchema: %w", op, err)
		}
		return fmt.Errorf("%s: %s (%s): %w", op, pqErr.Message, pqErr.Code.Name(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
