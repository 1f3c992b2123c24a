package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresSource reads remaining capacity from the product_availability
// table. The window must fully cover the requested range.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (p *PostgresSource) RemainingCapacity(ctx context.Context, productID, startDate, endDate string) (int, error) {
	query := `SELECT capacity FROM product_availability
	          WHERE product_id = $1 AND date_from <= $2 AND date_to >= $3
	          ORDER BY capacity ASC LIMIT 1`

	var capacity int
	err := p.db.QueryRowContext(ctx, query, productID, startDate, endDate).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoWindow
	}
	if err != nil {
		return 0, fmt.Errorf("query remaining capacity: %w", err)
	}

	return capacity, nil
}
