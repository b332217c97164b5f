package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

const pgForeignKeyViolation = "23503"

// PostgresStore implements Store on PostgreSQL. Foreign keys with
// ON DELETE CASCADE own the merchant -> shipment -> event lifecycle.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectOptions configures ConnectPostgres.
type ConnectOptions struct {
	Driver  string // "postgres" (lib/pq) or "pgx"
	URL     string
	Retries int
	Delay   time.Duration
}

// ConnectPostgres opens a pool and pings until the database answers or the
// retries run out. The database container usually starts after the API.
func ConnectPostgres(ctx context.Context, opts ConnectOptions, log *logger.Logger) (*sql.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "postgres"
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}

	db, err := sql.Open(driver, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: open (%s): %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		if attempt >= retries {
			_ = db.Close()
			return nil, fmt.Errorf("connect postgres: ping after %d attempts: %w", attempt, err)
		}
		log.Warn("database not ready, retrying", "attempt", attempt, "retries", retries, "error", err)

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("connect postgres: %w", ctx.Err())
		case <-time.After(opts.Delay):
		}
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Merchants

func (s *PostgresStore) CreateMerchant(ctx context.Context, id uuid.UUID, name string) (*merchant.Merchant, error) {
	m := merchant.Merchant{ID: id, Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO merchants (id, name) VALUES ($1, $2) RETURNING created_at`,
		id, name,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create merchant: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) ListMerchants(ctx context.Context) ([]merchant.Merchant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM merchants`)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	merchants := make([]merchant.Merchant, 0)
	for rows.Next() {
		var m merchant.Merchant
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("list merchants: scan row: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list merchants: row iteration: %w", err)
	}
	return merchants, nil
}

func (s *PostgresStore) GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	var m merchant.Merchant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM merchants WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merchant.ErrMerchantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get merchant %s: %w", id, err)
	}
	return &m, nil
}

func (s *PostgresStore) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete merchant %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete merchant %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return merchant.ErrMerchantNotFound
	}
	return nil
}

// Shipments

// CreateShipment inserts the shipment and its "created" event in one
// transaction. The event's occurred_at is the transaction clock.
func (s *PostgresStore) CreateShipment(ctx context.Context, p shipment.CreateParams) (_ *shipment.Shipment, _ *shipment.Event, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create shipment: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// lock the merchant row so a concurrent delete cannot slip in between
	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM merchants WHERE id = $1 FOR KEY SHARE`, p.MerchantID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, merchant.ErrMerchantNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create shipment: check merchant: %w", err)
	}

	sh := shipment.Shipment{ID: p.ID, UserID: p.UserID, MerchantID: p.MerchantID, Name: p.Name}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO shipments (id, user_id, merchant_id, name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		sh.ID, sh.UserID, sh.MerchantID, sh.Name,
	).Scan(&sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, nil, merchant.ErrMerchantNotFound
		}
		return nil, nil, fmt.Errorf("create shipment: insert shipment: %w", err)
	}

	ev := shipment.Event{
		ID:         p.EventID,
		ShipmentID: sh.ID,
		Type:       shipment.EventCreated,
		Source:     shipment.SourceSystem,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO shipment_events (id, shipment_id, type, source, occurred_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING occurred_at, created_at`,
		ev.ID, ev.ShipmentID, string(ev.Type), string(ev.Source),
	).Scan(&ev.OccurredAt, &ev.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create shipment: insert created event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("create shipment: commit tx: %w", err)
	}
	return &sh, &ev, nil
}

const shipmentColumns = `id, user_id, merchant_id, name, created_at, updated_at`

func (s *PostgresStore) ListShipments(ctx context.Context) ([]shipment.Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shipmentColumns+` FROM shipments`)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	shipments := make([]shipment.Shipment, 0)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("list shipments: scan row: %w", err)
		}
		shipments = append(shipments, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: row iteration: %w", err)
	}
	return shipments, nil
}

func (s *PostgresStore) GetShipment(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	return getShipment(ctx, s.db, id)
}

// GetShipmentWithEvents reads the shipment and its events from one snapshot.
func (s *PostgresStore) GetShipmentWithEvents(ctx context.Context, id uuid.UUID) (*shipment.WithEvents, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("get full shipment: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sh, err := getShipment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	events, err := listEvents(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("get full shipment: %w", err)
	}
	return &shipment.WithEvents{Shipment: *sh, Events: events}, nil
}

func (s *PostgresStore) ListShipmentEvents(ctx context.Context, shipmentID uuid.UUID) ([]shipment.Event, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, shipmentID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("list shipment events: check shipment: %w", err)
	}
	if !exists {
		return nil, shipment.ErrShipmentNotFound
	}

	events, err := listEvents(ctx, s.db, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list shipment events: %w", err)
	}
	return events, nil
}

// AppendShipmentEvent touches the shipment's updated_at and inserts the
// event in one transaction. The touch doubles as the existence check.
func (s *PostgresStore) AppendShipmentEvent(ctx context.Context, p shipment.AppendParams) (_ *shipment.Event, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("append shipment event: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE shipments SET updated_at = now() WHERE id = $1`, p.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("append shipment event: touch shipment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("append shipment event: rows affected: %w", err)
	}
	if n == 0 {
		return nil, shipment.ErrShipmentNotFound
	}

	ev := shipment.Event{
		ID:         p.ID,
		ShipmentID: p.ShipmentID,
		Type:       p.Type,
		Source:     p.Source,
		Reason:     p.Reason,
		OccurredAt: p.OccurredAt,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO shipment_events (id, shipment_id, type, source, reason, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING occurred_at, created_at`,
		ev.ID, ev.ShipmentID, string(ev.Type), string(ev.Source), nullString(ev.Reason), ev.OccurredAt,
	).Scan(&ev.OccurredAt, &ev.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, shipment.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("append shipment event: insert: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("append shipment event: commit tx: %w", err)
	}
	return &ev, nil
}

// helpers

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getShipment(ctx context.Context, q queryer, id uuid.UUID) (*shipment.Shipment, error) {
	sh, err := scanShipment(q.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shipment.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment %s: %w", id, err)
	}
	return &sh, nil
}

func scanShipment(row rowScanner) (shipment.Shipment, error) {
	var sh shipment.Shipment
	err := row.Scan(&sh.ID, &sh.UserID, &sh.MerchantID, &sh.Name, &sh.CreatedAt, &sh.UpdatedAt)
	return sh, err
}

func listEvents(ctx context.Context, q queryer, shipmentID uuid.UUID) ([]shipment.Event, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, shipment_id, type, source, reason, occurred_at, created_at, updated_at
		 FROM shipment_events
		 WHERE shipment_id = $1
		 ORDER BY occurred_at ASC, created_at ASC, id ASC`,
		shipmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]shipment.Event, 0, 8)
	for rows.Next() {
		var (
			e           shipment.Event
			typ, source string
			reason      sql.NullString
			updatedAt   sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.ShipmentID, &typ, &source, &reason, &e.OccurredAt, &e.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = shipment.EventType(typ)
		e.Source = shipment.EventSource(source)
		if reason.Valid {
			r := reason.String
			e.Reason = &r
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			e.UpdatedAt = &t
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event iteration: %w", err)
	}
	return events, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isForeignKeyViolation understands both lib/pq and pgx errors.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}
