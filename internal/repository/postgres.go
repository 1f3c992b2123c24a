package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "booking_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// DB exposes the underlying handle so other read paths (availability)
// can share the connection pool.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// CreateOrder inserts the order if no order for its checkout session
// exists yet. The unique index on checkout_session_id makes redelivered
// webhooks converge instead of duplicating rows.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (id, user_id, total_amount, currency, status, checkout_session_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	          ON CONFLICT (checkout_session_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.TotalAmount,
		order.Currency,
		order.Status,
		order.CheckoutSessionID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert order rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDuplicateSession
	}
	return nil
}

func (r *Repository) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT id, user_id, total_amount, currency, status, checkout_session_id, created_at, updated_at
	          FROM orders WHERE checkout_session_id = $1`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.CheckoutSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by session id: %w", err)
	}

	return &order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT id, user_id, total_amount, currency, status, checkout_session_id, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Currency,
			&order.Status,
			&order.CheckoutSessionID,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// CreateBooking inserts the booking with the same insert-if-absent
// semantics as CreateOrder, keyed on the checkout session.
func (r *Repository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	query := `INSERT INTO bookings (id, order_id, user_id, product_id, variant_id, start_date, end_date, participants, total_price, status, checkout_session_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	          ON CONFLICT (checkout_session_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.ProductID,
		booking.VariantID,
		booking.StartDate,
		booking.EndDate,
		booking.Participants,
		booking.TotalPrice,
		booking.Status,
		booking.CheckoutSessionID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert booking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDuplicateSession
	}
	return nil
}

func (r *Repository) GetBookingBySessionID(ctx context.Context, sessionID string) (*domain.Booking, error) {
	query := `SELECT id, order_id, user_id, product_id, variant_id, start_date, end_date, participants, total_price, status, checkout_session_id, created_at
	          FROM bookings WHERE checkout_session_id = $1`

	var booking domain.Booking
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.UserID,
		&booking.ProductID,
		&booking.VariantID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Participants,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CheckoutSessionID,
		&booking.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query booking by session id: %w", err)
	}

	return &booking, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
