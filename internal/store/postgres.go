package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"pawresort/internal/model"
	"pawresort/internal/tenant"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the PostgreSQL-backed store.
type DB struct {
	*sqlx.DB
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewDB opens a PostgreSQL connection pool and verifies it with a ping.
func NewDB(cfg DBConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{conn}, nil
}

// Migrate runs all pending schema migrations.
func (db *DB) Migrate() error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func statusStrings(statuses []model.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// FindReservations returns occupying reservations overlapping [Start, End]
// for the given tenant and resources in a single query. The window uses
// inclusive boundaries, matching model.DateRangeOverlaps.
func (db *DB) FindReservations(ctx context.Context, p FindReservationsParams) ([]OccupyingReservation, error) {
	if p.TenantID == "" {
		return nil, fmt.Errorf("find reservations: %w", tenant.ErrNoTenant)
	}
	if len(p.ResourceIDs) == 0 {
		return nil, errors.New("find reservations: empty resource list")
	}

	statuses := p.StatusIn
	if len(statuses) == 0 {
		statuses = model.OccupyingStatuses
	}

	query := `
		SELECT r.id, r.resource_id, r.start_date, r.end_date, r.status,
		       c.name AS customer_name, p.name AS pet_name, r.service_name
		FROM reservations r
		JOIN pets p ON p.id = r.pet_id AND p.tenant_id = r.tenant_id
		JOIN customers c ON c.id = r.customer_id AND c.tenant_id = r.tenant_id
		WHERE r.tenant_id = $1
		  AND r.resource_id = ANY($2::uuid[])
		  AND r.status = ANY($3)
		  AND r.start_date <= $4
		  AND r.end_date >= $5`
	args := []interface{}{
		p.TenantID, pq.Array(p.ResourceIDs), pq.Array(statusStrings(statuses)), p.End, p.Start,
	}

	if p.ExcludeID != "" {
		query += ` AND r.id <> $6`
		args = append(args, p.ExcludeID)
	}
	query += ` ORDER BY r.start_date, r.id`

	var rows []OccupyingReservation
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}

	return rows, nil
}

// lockConflicts locks occupying reservations that overlap the window on the
// given resource and returns how many exist. Held until the surrounding
// transaction commits, so two concurrent writers serialize on the same rows.
func lockConflicts(ctx context.Context, tx *sqlx.Tx, tenantID, resourceID string, start, end time.Time, excludeID string) (int, error) {
	query := `
		SELECT id FROM reservations
		WHERE tenant_id = $1
		  AND resource_id = $2
		  AND status = ANY($3)
		  AND start_date <= $4
		  AND end_date >= $5`
	args := []interface{}{
		tenantID, resourceID, pq.Array(statusStrings(model.OccupyingStatuses)), end, start,
	}
	if excludeID != "" {
		query += ` AND id <> $6`
		args = append(args, excludeID)
	}
	query += ` FOR UPDATE`

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return 0, fmt.Errorf("lock conflicting reservations: %w", err)
	}
	return len(ids), nil
}

// CreateReservation inserts a reservation. When a resource is assigned, the
// insert happens in a transaction that re-validates non-overlap at write
// time; the availability endpoints are advisory only.
func (db *DB) CreateReservation(ctx context.Context, p CreateReservationParams) (*model.Reservation, error) {
	if p.TenantID == "" {
		return nil, fmt.Errorf("create reservation: %w", tenant.ErrNoTenant)
	}
	if p.StartDate.After(p.EndDate) {
		return nil, errors.New("create reservation: start date after end date")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.ResourceID != nil {
		n, err := lockConflicts(ctx, tx, p.TenantID, *p.ResourceID, p.StartDate, p.EndDate, "")
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrConflict
		}
	}

	var r model.Reservation
	err = tx.GetContext(ctx, &r, `
		INSERT INTO reservations
			(tenant_id, resource_id, pet_id, customer_id, service_name, service_category,
			 start_date, end_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, tenant_id, resource_id, pet_id, customer_id, service_name, service_category,
		          start_date, end_date, status, notes, reminder_sent_at, created_at, updated_at`,
		p.TenantID, p.ResourceID, p.PetID, p.CustomerID, p.ServiceName, string(p.ServiceCategory),
		p.StartDate, p.EndDate, string(p.Status), p.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	return &r, nil
}

// UpdateStay moves a reservation to new dates and/or a new resource. The
// reservation itself is always excluded from the conflict re-check, so an
// edit never conflicts with its own previous stay.
func (db *DB) UpdateStay(ctx context.Context, p UpdateStayParams) (*model.Reservation, error) {
	if p.TenantID == "" {
		return nil, fmt.Errorf("update stay: %w", tenant.ErrNoTenant)
	}
	if p.StartDate.After(p.EndDate) {
		return nil, errors.New("update stay: start date after end date")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.ResourceID != nil {
		n, err := lockConflicts(ctx, tx, p.TenantID, *p.ResourceID, p.StartDate, p.EndDate, p.ReservationID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrConflict
		}
	}

	var r model.Reservation
	err = tx.GetContext(ctx, &r, `
		UPDATE reservations
		SET resource_id = $1, start_date = $2, end_date = $3, updated_at = now()
		WHERE tenant_id = $4 AND id = $5
		RETURNING id, tenant_id, resource_id, pet_id, customer_id, service_name, service_category,
		          start_date, end_date, status, notes, reminder_sent_at, created_at, updated_at`,
		p.ResourceID, p.StartDate, p.EndDate, p.TenantID, p.ReservationID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return &r, nil
}

// GetReservation fetches one reservation scoped by tenant.
func (db *DB) GetReservation(ctx context.Context, tenantID, id string) (*model.Reservation, error) {
	var r model.Reservation
	err := db.GetContext(ctx, &r, `
		SELECT id, tenant_id, resource_id, pet_id, customer_id, service_name, service_category,
		       start_date, end_date, status, notes, reminder_sent_at, created_at, updated_at
		FROM reservations
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select reservation: %w", err)
	}
	return &r, nil
}

// ListResources returns the tenant's active resource catalog.
func (db *DB) ListResources(ctx context.Context, tenantID string) ([]model.Resource, error) {
	var resources []model.Resource
	err := db.SelectContext(ctx, &resources, `
		SELECT id, tenant_id, name, type, max_pets, is_active, created_at, updated_at
		FROM resources
		WHERE tenant_id = $1 AND is_active
		ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("select resources: %w", err)
	}
	return resources, nil
}

// GetResource fetches one resource scoped by tenant.
func (db *DB) GetResource(ctx context.Context, tenantID, id string) (*model.Resource, error) {
	var r model.Resource
	err := db.GetContext(ctx, &r, `
		SELECT id, tenant_id, name, type, max_pets, is_active, created_at, updated_at
		FROM resources
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select resource: %w", err)
	}
	return &r, nil
}

// GetTenantByKey resolves a tenant from its request key.
func (db *DB) GetTenantByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := db.GetContext(ctx, &t, `
		SELECT id, key, name, status, created_at
		FROM tenants
		WHERE key = $1`,
		key,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("select tenant: %w", err)
	}
	return &t, nil
}

// FindUpcomingCheckIns returns occupying reservations starting within the
// window that have not had a reminder sent. Spans all tenants; the reminder
// scanner is a backend job, not a request path.
func (db *DB) FindUpcomingCheckIns(ctx context.Context, within time.Duration) ([]model.Reservation, error) {
	now := time.Now().UTC()
	var rows []model.Reservation
	err := db.SelectContext(ctx, &rows, `
		SELECT id, tenant_id, resource_id, pet_id, customer_id, service_name, service_category,
		       start_date, end_date, status, notes, reminder_sent_at, created_at, updated_at
		FROM reservations
		WHERE reminder_sent_at IS NULL
		  AND status = ANY($1)
		  AND start_date BETWEEN $2 AND $3
		ORDER BY start_date`,
		pq.Array(statusStrings(model.OccupyingStatuses)), now, now.Add(within),
	)
	if err != nil {
		return nil, fmt.Errorf("select upcoming check-ins: %w", err)
	}
	return rows, nil
}

// MarkReminderSent records that a check-in reminder went out.
func (db *DB) MarkReminderSent(ctx context.Context, tenantID, reservationID string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE reservations
		SET reminder_sent_at = now(), updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, reservationID,
	)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var (
	_ ReservationStore = (*DB)(nil)
	_ ResourceStore    = (*DB)(nil)
	_ TenantStore      = (*DB)(nil)
	_ ReminderStore    = (*DB)(nil)
)
