package handler

import (
	"marketplace-payments/internal/adapter/http/dto"
	"marketplace-payments/internal/adapter/http/middleware"
	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"
	"marketplace-payments/pkg/apperror"
	"marketplace-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultOrderCurrency = "INR"

// OrderHandler exposes the gateway order lifecycle: create, verify, capture.
type OrderHandler struct {
	gateway ports.GatewayClient
	keyID   string
}

// NewOrderHandler creates a new OrderHandler. keyID is the public Razorpay
// key id handed to the checkout widget.
func NewOrderHandler(gateway ports.GatewayClient, keyID string) *OrderHandler {
	return &OrderHandler{gateway: gateway, keyID: keyID}
}

// CreateOrder handles POST /api/v1/payments/razorpay/orders. The owner
// defaults to the authenticated caller; the amount arrives in major units
// and is registered with the gateway in minor units.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ownerID := req.OwnerID
	ownerType := domain.ParseOwnerType(req.OwnerType)
	if ownerID == "" {
		ownerID = c.GetString(middleware.CtxOwnerID)
		if v, ok := c.Get(middleware.CtxOwnerType); ok {
			if ot, ok := v.(domain.OwnerType); ok {
				ownerType = ot
			}
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultOrderCurrency
	}

	order, err := h.gateway.CreateOrder(c.Request.Context(), ports.OrderRequest{
		Amount:    domain.ToMinorUnits(req.Amount),
		Currency:  currency,
		Receipt:   req.Receipt,
		OwnerID:   ownerID,
		OwnerType: ownerType,
	})
	if err != nil {
		response.Error(c, apperror.ErrGateway(err))
		return
	}

	response.Created(c, dto.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
		KeyID:    h.keyID,
	})
}

// VerifyPayment handles POST /api/v1/payments/razorpay/verify. It returns the
// gateway's view of the payment verbatim so the frontend can inspect status.
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payment, err := h.gateway.FetchPayment(c.Request.Context(), req.PaymentID)
	if err != nil {
		response.Error(c, apperror.ErrGateway(err))
		return
	}
	response.OK(c, payment)
}

// CapturePayment handles POST /api/v1/payments/razorpay/capture.
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	var req dto.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultOrderCurrency
	}

	captured, err := h.gateway.CapturePayment(c.Request.Context(), req.PaymentID, domain.ToMinorUnits(req.Amount), currency)
	if err != nil {
		response.Error(c, apperror.ErrGateway(err))
		return
	}
	response.OK(c, captured)
}
