package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/orders"
	"github.com/rbc-easyrent/signiflow-order-service/internal/payload"
	"github.com/rbc-easyrent/signiflow-order-service/internal/pdf"
	"github.com/rbc-easyrent/signiflow-order-service/internal/service"
	"github.com/rbc-easyrent/signiflow-order-service/internal/worker"
)

type stubClient struct {
	loginErr error
	result   *models.SigningResult
}

func (s *stubClient) Token(ctx context.Context) (models.TokenObject, error) {
	if s.loginErr != nil {
		return models.TokenObject{}, s.loginErr
	}
	return models.TokenObject{TokenField: "abc123"}, nil
}

func (s *stubClient) Submit(ctx context.Context, req *models.FullWorkflowRequest) (*models.SigningResult, error) {
	return s.result, nil
}

func (s *stubClient) Login(ctx context.Context) (models.TokenObject, error) {
	return s.Token(ctx)
}

type noSource struct{}

func (noSource) Resolve(ctx context.Context, ref string) ([]byte, error) {
	return nil, flowerrors.Pdf("PDF file not readable: "+ref, nil)
}

var _ pdf.Source = noSource{}

func newProcessHandler(t *testing.T, client *stubClient) (*ProcessHandler, *orders.MemoryStore) {
	t.Helper()

	store := orders.NewMemoryStore()
	store.Put(&models.Order{
		ID:            42,
		FirstName:     "Jane",
		LastName:      "Citizen",
		Email:         "a@b.com",
		Items:         []models.LineItem{{Name: "Machine", Quantity: 1, Total: decimal.NewFromInt(100)}},
		SigningStatus: models.SigningPending,
	})

	cfg := &config.Config{WorkflowID: "2301"}
	svc := service.NewSigningService(store, client, payload.NewBuilder(noSource{}), cfg)
	pool := worker.NewPool(svc, 1)
	return NewProcessHandler(svc, pool, client), store
}

func TestProcessOrderSynchronous(t *testing.T) {
	h, store := newProcessHandler(t, &stubClient{result: &models.SigningResult{DocID: "98765", WorkflowID: "55"}})

	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"order_id":42}`))
	rec := httptest.NewRecorder()
	h.ProcessOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":"sent"`)

	order, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.SigningSent, order.SigningStatus)
}

func TestProcessOrderBadRequests(t *testing.T) {
	h, _ := newProcessHandler(t, &stubClient{})

	cases := []string{
		`not json`,
		`{}`,
		`{"order_id":0}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ProcessOrder(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestHandleEventQueues(t *testing.T) {
	h, _ := newProcessHandler(t, &stubClient{result: &models.SigningResult{DocID: "1", WorkflowID: "2"}})

	req := httptest.NewRequest(http.MethodPost, "/events/order", strings.NewReader(`{"order_id":42,"event":"payment_complete"}`))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queued":true`)
}

func TestHandleEventRejectsUnknownEvent(t *testing.T) {
	h, _ := newProcessHandler(t, &stubClient{})

	req := httptest.NewRequest(http.MethodPost, "/events/order", strings.NewReader(`{"order_id":42,"event":"order_refunded"}`))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestLogin(t *testing.T) {
	h, _ := newProcessHandler(t, &stubClient{})

	req := httptest.NewRequest(http.MethodPost, "/test/login", nil)
	rec := httptest.NewRecorder()
	h.TestLogin(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestTestLoginFailure(t *testing.T) {
	h, _ := newProcessHandler(t, &stubClient{loginErr: flowerrors.Authentication("Login failed with HTTP 401", nil)})

	req := httptest.NewRequest(http.MethodPost, "/test/login", nil)
	rec := httptest.NewRecorder()
	h.TestLogin(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
