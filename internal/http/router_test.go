package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/availability"
	"github.com/zvMateo/Maikekai-surf/internal/booking"
	"github.com/zvMateo/Maikekai-surf/internal/cache"
	"github.com/zvMateo/Maikekai-surf/internal/cart"
	"github.com/zvMateo/Maikekai-surf/internal/checkout"
	"github.com/zvMateo/Maikekai-surf/internal/domain"
	"github.com/zvMateo/Maikekai-surf/internal/payment"
	"github.com/zvMateo/Maikekai-surf/internal/repository"
	"github.com/zvMateo/Maikekai-surf/internal/webhook"
)

type stubGateway struct {
	url string
	err error
}

func (s *stubGateway) CreateCheckoutSession(context.Context, *payment.CheckoutRequest) (string, error) {
	return s.url, s.err
}

type stubVerifier struct {
	event *payment.Event
	err   error
}

func (s *stubVerifier) VerifyEvent([]byte, string) (*payment.Event, error) {
	return s.event, s.err
}

type stubOrderRepo struct {
	orders  []*domain.Order
	listErr error
}

func (s *stubOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	s.orders = append(s.orders, order)
	return nil
}

func (s *stubOrderRepo) GetOrderBySessionID(context.Context, string) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (s *stubOrderRepo) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return s.orders, s.listErr
}

type stubBookingRepo struct {
	bookings []*domain.Booking
}

func (s *stubBookingRepo) CreateBooking(_ context.Context, booking *domain.Booking) error {
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *stubBookingRepo) GetBookingBySessionID(context.Context, string) (*domain.Booking, error) {
	return nil, repository.ErrBookingNotFound
}

type routerFixture struct {
	router   http.Handler
	orders   *stubOrderRepo
	bookings *stubBookingRepo
	source   *fixedCapacitySource
}

type fixedCapacitySource struct {
	capacity int
}

func (f *fixedCapacitySource) RemainingCapacity(context.Context, string, string, string) (int, error) {
	return f.capacity, nil
}

func newRouterFixture(gateway payment.Gateway, verifier payment.EventVerifier) *routerFixture {
	logger := zap.NewNop()
	source := &fixedCapacitySource{capacity: 10}

	carts := cart.NewService(cart.NewMemoryStorage(), cache.Noop{}, logger)
	checker := availability.NewChecker(source, false, logger)
	orchestrator := booking.NewOrchestrator(checker, carts, logger)
	builder := checkout.NewBuilder(gateway, "https://maikekaisurf.com", logger)

	orders := &stubOrderRepo{}
	bookings := &stubBookingRepo{}
	webhookCore := webhook.NewHandler(verifier, orders, bookings, nil, nil, logger)

	router := NewRouter(&RouterConfig{
		CartHandler:     NewCartHandler(carts, orchestrator, logger),
		CheckoutHandler: NewCheckoutHandler(builder, logger),
		WebhookHandler:  NewWebhookHandler(webhookCore, logger),
		OrdersHandler:   NewOrdersHandler(orders, logger),
		RequestTimeout:  5 * time.Second,
	})

	return &routerFixture{router: router, orders: orders, bookings: bookings, source: source}
}

func doJSON(t *testing.T, router http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCart_MissingSessionRejected(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "missing_session", resp.Code)
}

func TestCart_SessionFromCookie(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "cookie-session"})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCart_AddThenGet(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{
		ProductID: "p1",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-05",
		Persons:   2,
		Quantity:  1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, f.router, http.MethodGet, "/api/v1/cart", "session-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p1", resp.Items[0].ProductID)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestCart_AddNoAvailabilityConflicts(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})
	f.source.capacity = 1

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{
		ProductID: "p1",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-05",
		Persons:   4,
		Quantity:  1,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	// The rejected add left the cart untouched.
	rec = doJSON(t, f.router, http.MethodGet, "/api/v1/cart", "session-1", nil)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestCart_AddMissingProductID(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{Quantity: 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_AddInvalidJSON(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{not json"))
	req.Header.Set("X-Session-ID", "session-1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_QuantityDefaultsToOne(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{ProductID: "p1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestCart_RemoveItem(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{ProductID: "p1", VariantID: "v1", Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, f.router, http.MethodDelete, "/api/v1/cart/items/p1?variant_id=v1", "session-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestCart_Clear(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-1", AddItemRequestDTO{ProductID: "p1", Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, f.router, http.MethodDelete, "/api/v1/cart/", "session-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, f.router, http.MethodGet, "/api/v1/cart", "session-1", nil)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestCheckout_ReturnsRedirectURL(t *testing.T) {
	f := newRouterFixture(&stubGateway{url: "https://pay.example/s"}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/checkout", "session-1", CreateCheckoutRequestDTO{
		Items: []checkout.LineItem{{Name: "Surf lesson", Amount: 5000, Quantity: 1}},
		Email: "surfer@example.com",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CreateCheckoutResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "https://pay.example/s", resp.URL)
}

func TestCheckout_InvalidLineItems(t *testing.T) {
	f := newRouterFixture(&stubGateway{url: "https://pay.example/s"}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodPost, "/api/v1/checkout", "session-1", CreateCheckoutRequestDTO{
		Items: []checkout.LineItem{{Name: "Surf lesson", Amount: 0, Quantity: 1}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_line_items", resp.Code)
}

func TestCheckout_InvalidJSON(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{err: payment.ErrInvalidSignature})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewBufferString("{}"))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.orders.orders)
}

func TestWebhook_CompletedEventAcknowledged(t *testing.T) {
	verifier := &stubVerifier{event: &payment.Event{
		Kind: payment.EventCheckoutCompleted,
		Session: &payment.CheckoutSession{
			ID:                "cs_test_123",
			AmountTotal:       25000,
			Currency:          "usd",
			ClientReferenceID: "session-1",
			Metadata:          map[string]string{"product_id": "p1"},
		},
	}}
	f := newRouterFixture(&stubGateway{}, verifier)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewBufferString("{}"))
	req.Header.Set("Stripe-Signature", "t=1,v1=good")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.orders.orders, 1)
	require.Len(t, f.bookings.bookings, 1)

	var resp map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp["received"])
}

func TestWebhook_OversizedPayloadRejected(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{event: &payment.Event{Kind: payment.EventIgnored}})

	// One byte over the 64KB cap.
	oversized := bytes.Repeat([]byte("a"), 1<<16+1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(oversized))
	req.Header.Set("Stripe-Signature", "t=1,v1=irrelevant")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "payload_too_large", resp.Code)
	assert.Empty(t, f.orders.orders)
}

func TestWebhook_IgnoredEventAcknowledged(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{event: &payment.Event{Kind: payment.EventIgnored}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.orders.orders)
}

func TestOrders_ListBySession(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})
	f.orders.orders = []*domain.Order{{
		UserID:            "session-1",
		TotalAmount:       25000,
		Currency:          "usd",
		Status:            domain.OrderStatusPaid,
		CheckoutSessionID: "cs_test_123",
	}}

	rec := doJSON(t, f.router, http.MethodGet, "/api/v1/orders", "session-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]OrderDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["orders"], 1)
	assert.Equal(t, "cs_test_123", resp["orders"][0].CheckoutSessionID)
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(&stubGateway{}, &stubVerifier{})

	rec := doJSON(t, f.router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
