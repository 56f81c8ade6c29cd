package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	order   *ports.GatewayOrder
	payment json.RawMessage
	err     error

	lastOrderReq   ports.OrderRequest
	lastCaptureAmt int64
}

func (g *stubGateway) CreateOrder(_ context.Context, req ports.OrderRequest) (*ports.GatewayOrder, error) {
	g.lastOrderReq = req
	return g.order, g.err
}

func (g *stubGateway) FetchPayment(_ context.Context, _ string) (json.RawMessage, error) {
	return g.payment, g.err
}

func (g *stubGateway) CapturePayment(_ context.Context, _ string, amount int64, _ string) (json.RawMessage, error) {
	g.lastCaptureAmt = amount
	return g.payment, g.err
}

func newOrderRouter(gw ports.GatewayClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(gw, "rzp_test_key")
	r := gin.New()
	r.POST("/orders", fakeAuth("emp-1"), h.CreateOrder)
	r.POST("/verify", h.VerifyPayment)
	r.POST("/capture", h.CapturePayment)
	return r
}

func TestCreateOrder_ConvertsMajorToMinorUnits(t *testing.T) {
	gw := &stubGateway{order: &ports.GatewayOrder{ID: "order_1", Amount: 150050, Currency: "INR", Status: "created"}}
	r := newOrderRouter(gw)

	body := `{"amount": 1500.50, "owner_id": "emp-1", "owner_type": "employer"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(150050), gw.lastOrderReq.Amount)
	assert.Equal(t, "INR", gw.lastOrderReq.Currency)
	assert.Contains(t, w.Body.String(), "rzp_test_key")
	assert.Contains(t, w.Body.String(), "order_1")
}

func TestCreateOrder_OwnerDefaultsFromToken(t *testing.T) {
	gw := &stubGateway{order: &ports.GatewayOrder{ID: "order_1", Amount: 100, Currency: "INR"}}
	r := newOrderRouter(gw)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"amount": 1}`)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "emp-1", gw.lastOrderReq.OwnerID)
}

func TestCreateOrder_RejectsNonPositiveAmount(t *testing.T) {
	r := newOrderRouter(&stubGateway{})

	for _, body := range []string{`{"amount": 0}`, `{"amount": -5}`, `{}`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	gw := &stubGateway{err: errors.New("connect timeout")}
	r := newOrderRouter(gw)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"amount": 10}`)))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "GW_001")
}

func TestVerifyPayment(t *testing.T) {
	gw := &stubGateway{payment: json.RawMessage(`{"id":"pay_1","status":"captured"}`)}
	r := newOrderRouter(gw)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"payment_id":"pay_1"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "captured")
}

func TestCapturePayment_ConvertsUnits(t *testing.T) {
	gw := &stubGateway{payment: json.RawMessage(`{"id":"pay_1","status":"captured"}`)}
	r := newOrderRouter(gw)

	body := `{"payment_id":"pay_1","amount":250.00}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/capture", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(25000), gw.lastCaptureAmt)
}
