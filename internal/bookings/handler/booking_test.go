package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voyago/internal/bookings/service"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/logger"
	"voyago/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	testTripID    = "507f1f77bcf86cd799439011"
	testBookingID = "64f1a2b3c4d5e6f7a8b9c0d1"
)

type mockBookingService struct {
	createFunc  func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	getAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	confirmFunc func(ctx context.Context, id string, paymentReference string) (*model.Booking, error)
	expireFunc  func(ctx context.Context, id string) (bool, error)
	cancelFunc  func(ctx context.Context, id string) (*model.CancellationResult, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, apperrors.Internal("not implemented", nil)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Confirm(ctx context.Context, id string, paymentReference string) (*model.Booking, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id, paymentReference)
	}
	return nil, apperrors.Internal("not implemented", nil)
}

func (m *mockBookingService) Expire(ctx context.Context, id string) (bool, error) {
	if m.expireFunc != nil {
		return m.expireFunc(ctx, id)
	}
	return false, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) (*model.CancellationResult, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil, apperrors.Internal("not implemented", nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
}

func newRouter(svc service.BookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestCreateHandler_Created(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
			return &model.Booking{
				ID:             testBookingID,
				TripID:         req.TripID,
				UserID:         req.UserID,
				NumSeats:       req.NumSeats,
				State:          model.BookingStatePendingPayment,
				PriceAtBooking: 400,
				IdempotencyKey: "generated-key",
				ExpiresAt:      time.Now().Add(15 * time.Minute),
			}, nil
		},
	}

	body, _ := json.Marshal(model.BookingRequest{
		TripID:   testTripID,
		UserID:   "user-1",
		NumSeats: 2,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.State != model.BookingStatePendingPayment {
		t.Errorf("expected state PENDING_PAYMENT, got %s", resp.Data.State)
	}
	if resp.Data.IdempotencyKey == "" {
		t.Error("expected the response to carry the generated idempotency key")
	}
}

func TestCreateHandler_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateHandler_InsufficientSeats(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
			return nil, apperrors.New("INSUFFICIENT_SEATS", "Not enough seats available", http.StatusConflict)
		},
	}

	body, _ := json.Marshal(model.BookingRequest{TripID: testTripID, UserID: "user-1", NumSeats: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "INSUFFICIENT_SEATS" {
		t.Errorf("expected code INSUFFICIENT_SEATS, got %s", resp.Code)
	}
}

func TestGetByIDHandler_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/"+testBookingID, nil)
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCancelHandler_Success(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string) (*model.CancellationResult, error) {
			return &model.CancellationResult{
				Booking:       &model.Booking{ID: id, State: model.BookingStateCancelled},
				RefundAmount:  180,
				IsRefundable:  true,
				DaysUntilTrip: 10,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/cancel", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.CancellationResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.RefundAmount != 180 {
		t.Errorf("expected refund 180, got %v", resp.Data.RefundAmount)
	}
}

func TestCancelHandler_AlreadyTerminal(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string) (*model.CancellationResult, error) {
			return nil, apperrors.New("ALREADY_TERMINAL", "Booking is in a terminal state", http.StatusConflict)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/cancel", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestGetAllHandler_Paginated(t *testing.T) {
	svc := &mockBookingService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			return []*model.Booking{{ID: testBookingID}}, 42, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=5&offset=0", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		TotalCount int64 `json:"total_count"`
		Limit      int   `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCount != 42 {
		t.Errorf("expected total 42, got %d", resp.TotalCount)
	}
	if resp.Limit != 5 {
		t.Errorf("expected limit 5, got %d", resp.Limit)
	}
}

func newTestReconciler(svc service.BookingService) *service.Reconciler {
	cfg := &config.Config{
		Log:        testLogger(),
		BookingTTL: 15 * time.Minute,
	}
	return service.NewReconciler(svc, cfg)
}

func TestWebhook_MalformedBodyStillAcked(t *testing.T) {
	router := httprouter.New()
	NewWebhookHandler(newTestReconciler(&mockBookingService{}), testLogger()).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed body, got %d", rec.Code)
	}

	var resp WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Received {
		t.Error("expected received to be true")
	}
	if resp.Result != string(service.ReconcileIgnored) {
		t.Errorf("expected result ignored, got %s", resp.Result)
	}
}

func TestWebhook_SuccessOutcomeConfirms(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:             id,
				State:          model.BookingStatePendingPayment,
				IdempotencyKey: "idem-1",
				ExpiresAt:      time.Now().Add(10 * time.Minute),
			}, nil
		},
		confirmFunc: func(ctx context.Context, id string, paymentReference string) (*model.Booking, error) {
			return &model.Booking{ID: id, State: model.BookingStateConfirmed}, nil
		},
	}

	router := httprouter.New()
	NewWebhookHandler(newTestReconciler(svc), testLogger()).RegisterRoutes(router)

	body, _ := json.Marshal(model.PaymentOutcomeEvent{
		BookingID:        testBookingID,
		IdempotencyKey:   "idem-1",
		Outcome:          model.PaymentOutcomeSuccess,
		PaymentReference: "pay-123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result != string(service.ReconcileConfirmed) {
		t.Errorf("expected result confirmed, got %s", resp.Result)
	}
}

func TestWebhook_UnknownBookingStillAcked(t *testing.T) {
	router := httprouter.New()
	NewWebhookHandler(newTestReconciler(&mockBookingService{}), testLogger()).RegisterRoutes(router)

	body, _ := json.Marshal(model.PaymentOutcomeEvent{
		BookingID:      testBookingID,
		IdempotencyKey: "idem-1",
		Outcome:        model.PaymentOutcomeFailed,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown booking, got %d", rec.Code)
	}
}
