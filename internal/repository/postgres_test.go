package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(checkoutSessionID string) *domain.Order {
	return &domain.Order{
		ID:                uuid.New(),
		UserID:            "session-123",
		TotalAmount:       25000,
		Currency:          "usd",
		Status:            domain.OrderStatusPaid,
		CheckoutSessionID: checkoutSessionID,
	}
}

func newTestBooking(orderID uuid.UUID, checkoutSessionID string) *domain.Booking {
	return &domain.Booking{
		ID:                uuid.New(),
		OrderID:           orderID,
		UserID:            "session-123",
		ProductID:         "p1",
		VariantID:         "v1",
		StartDate:         "2024-03-01",
		EndDate:           "2024-03-05",
		Participants:      2,
		TotalPrice:        25000,
		Status:            domain.BookingStatusConfirmed,
		CheckoutSessionID: checkoutSessionID,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("cs_test_create")

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.GetOrderBySessionID(ctx, "cs_test_create")
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.UserID, fetched.UserID)
	assert.Equal(t, order.TotalAmount, fetched.TotalAmount)
	assert.Equal(t, order.Currency, fetched.Currency)
	assert.Equal(t, order.Status, fetched.Status)
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestCreateOrder_DuplicateSession(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sessionID := "cs_test_duplicate"

	order1 := newTestOrder(sessionID)
	err := repo.CreateOrder(ctx, order1)
	require.NoError(t, err)

	order2 := newTestOrder(sessionID) // same session, new order id
	err = repo.CreateOrder(ctx, order2)
	assert.ErrorIs(t, err, ErrDuplicateSession)

	// The first write won; the retry converges on it.
	fetched, err := repo.GetOrderBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, order1.ID, fetched.ID)
}

func TestGetOrderBySessionID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.GetOrderBySessionID(ctx, "cs_never_seen")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := "session-list-test"

	order1 := newTestOrder("cs_list_1")
	order1.UserID = userID
	require.NoError(t, repo.CreateOrder(ctx, order1))

	// Small sleep to ensure different created_at timestamps
	time.Sleep(10 * time.Millisecond)

	order2 := newTestOrder("cs_list_2")
	order2.UserID = userID
	require.NoError(t, repo.CreateOrder(ctx, order2))

	orders, err := repo.ListOrdersByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)
}

func TestCreateBooking_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("cs_test_booking")
	require.NoError(t, repo.CreateOrder(ctx, order))

	booking := newTestBooking(order.ID, "cs_test_booking")
	err := repo.CreateBooking(ctx, booking)
	require.NoError(t, err)

	fetched, err := repo.GetBookingBySessionID(ctx, "cs_test_booking")
	require.NoError(t, err)
	assert.Equal(t, booking.ID, fetched.ID)
	assert.Equal(t, order.ID, fetched.OrderID)
	assert.Equal(t, "p1", fetched.ProductID)
	assert.Equal(t, "2024-03-01", fetched.StartDate)
	assert.Equal(t, "2024-03-05", fetched.EndDate)
	assert.Equal(t, 2, fetched.Participants)
	assert.Equal(t, domain.BookingStatusConfirmed, fetched.Status)
}

func TestCreateBooking_DuplicateSession(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sessionID := "cs_test_booking_dup"
	order := newTestOrder(sessionID)
	require.NoError(t, repo.CreateOrder(ctx, order))

	booking1 := newTestBooking(order.ID, sessionID)
	require.NoError(t, repo.CreateBooking(ctx, booking1))

	booking2 := newTestBooking(order.ID, sessionID)
	err := repo.CreateBooking(ctx, booking2)
	assert.ErrorIs(t, err, ErrDuplicateSession)

	fetched, err := repo.GetBookingBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, booking1.ID, fetched.ID)
}

func TestGetBookingBySessionID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.GetBookingBySessionID(ctx, "cs_never_seen")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
