package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/domain/entity"
	"github.com/lumastack/billing-service/internal/middleware/auth"
	"github.com/lumastack/billing-service/internal/usecase"
)

const (
	testJWTSecret = "test-jwt-secret"
	testUserID    = "8f14e45f-ceea-4f01-a2b8-1c3f8e9a0b6d"
)

// MockPaymentProvider is a mock implementation of provider.PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCustomer(ctx context.Context, email, userID string) (*stripe.Customer, error) {
	args := m.Called(ctx, email, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Customer), args.Error(1)
}

func (m *MockPaymentProvider) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Customer), args.Error(1)
}

func (m *MockPaymentProvider) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *MockPaymentProvider) UpdateCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID, cancel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *MockPaymentProvider) ListInvoices(ctx context.Context, customerID, subscriptionID, startingAfter string, limit int64) ([]*stripe.Invoice, bool, error) {
	args := m.Called(ctx, customerID, subscriptionID, startingAfter, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*stripe.Invoice), args.Bool(1), args.Error(2)
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, userID string) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, customerID, priceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) CreatePortalSession(ctx context.Context, customerID string) (*stripe.BillingPortalSession, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.BillingPortalSession), args.Error(1)
}

// MockCustomerRepository is a mock implementation of repository.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByUserID(ctx context.Context, userID string) (*entity.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateEmail(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

type invoicePageBody struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
	PrevCursor string `json:"prev_cursor"`
}

func testInvoices(ids ...string) []*stripe.Invoice {
	invoices := make([]*stripe.Invoice, 0, len(ids))
	for _, id := range ids {
		invoices = append(invoices, &stripe.Invoice{
			ID:        id,
			AmountDue: 1999,
			Currency:  stripe.CurrencyUSD,
			Created:   1700000000,
		})
	}
	return invoices
}

// Paging forward hands out a next_cursor token, and following the matching
// prev_cursor replays the exact provider query of the page it came from.
func TestSubscriptionHandler_ListInvoices_CursorRoundTrip(t *testing.T) {
	mockProvider := new(MockPaymentProvider)
	mockCustomerRepo := new(MockCustomerRepository)

	mockCustomerRepo.On("GetByUserID", mock.Anything, testUserID).
		Return(&entity.Customer{UserID: testUserID, StripeCustomerID: "cus_123"}, nil)

	// The first page and its replay share the empty starting_after
	mockProvider.On("ListInvoices", mock.Anything, "cus_123", "sub_1", "", int64(10)).
		Return(testInvoices("in_101", "in_102"), true, nil).Twice()
	mockProvider.On("ListInvoices", mock.Anything, "cus_123", "sub_1", "in_102", int64(10)).
		Return(testInvoices("in_103"), false, nil).Once()

	logger := zap.NewNop()
	service := usecase.NewSubscriptionService(mockProvider, nil, mockCustomerRepo, logger)
	handler := NewSubscriptionHandler(logger, service)

	wrapped := auth.JWTMiddleware(auth.JWTConfig{
		Secret: testJWTSecret,
		Logger: logger,
	})(handler.ListInvoices)

	token := bearerToken(t, testUserID)
	e := echo.New()

	fetch := func(cursorToken string) invoicePageBody {
		t.Helper()

		target := "/api/v1/invoices?subscription_id=sub_1"
		if cursorToken != "" {
			target += "&cursor=" + cursorToken
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, wrapped(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body invoicePageBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	first := fetch("")
	require.Len(t, first.Data, 2)
	assert.Equal(t, "in_101", first.Data[0].ID)
	assert.Equal(t, "in_102", first.Data[1].ID)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextCursor)
	assert.Empty(t, first.PrevCursor, "the first page has nothing to go back to")

	second := fetch(first.NextCursor)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "in_103", second.Data[0].ID)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
	assert.NotEmpty(t, second.PrevCursor)

	replayed := fetch(second.PrevCursor)
	assert.Equal(t, first.Data, replayed.Data)
	assert.Equal(t, first.NextCursor, replayed.NextCursor)
	assert.Empty(t, replayed.PrevCursor)

	mockProvider.AssertExpectations(t)
}

func TestSubscriptionHandler_ListInvoices_InvalidCursorRejected(t *testing.T) {
	logger := zap.NewNop()
	service := usecase.NewSubscriptionService(new(MockPaymentProvider), nil, new(MockCustomerRepository), logger)
	handler := NewSubscriptionHandler(logger, service)

	wrapped := auth.JWTMiddleware(auth.JWTConfig{
		Secret: testJWTSecret,
		Logger: logger,
	})(handler.ListInvoices)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?cursor=%21%21garbage", nil)
	req.Header.Set("Authorization", bearerToken(t, testUserID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, wrapped(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid cursor")
}
