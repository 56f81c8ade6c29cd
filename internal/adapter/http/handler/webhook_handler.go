package handler

import (
	"io"
	"net/http"

	"marketplace-payments/config"
	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"
	"marketplace-payments/pkg/apperror"
	"marketplace-payments/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderRazorpaySignature carries the HMAC-SHA256 of the raw request body.
const HeaderRazorpaySignature = "X-Razorpay-Signature"

// WebhookHandler receives gateway webhooks. It verifies, parses, enqueues
// and returns: all ledger work happens on the worker, so the gateway gets
// its 200 within its delivery timeout regardless of database latency.
type WebhookHandler struct {
	sigSvc ports.SignatureService
	queue  ports.EventQueue
	cfg    config.RazorpayConfig
	log    zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(sigSvc ports.SignatureService, queue ports.EventQueue, cfg config.RazorpayConfig, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{sigSvc: sigSvc, queue: queue, cfg: cfg, log: log}
}

// Receive handles POST /api/v1/payments/razorpay/webhook.
//
// Verification runs over the exact raw bytes of the body: any re-serialization
// would change the byte stream and break the signature.
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	if !h.cfg.SkipWebhookVerify {
		signature := c.GetHeader(HeaderRazorpaySignature)
		if signature == "" || !h.sigSvc.Verify(h.cfg.WebhookSecret, raw, signature) {
			h.log.Warn().
				Str("client_ip", c.ClientIP()).
				Msg("webhook signature verification failed")
			response.Error(c, apperror.ErrInvalidSignature())
			return
		}
	}

	ev, err := domain.ParseWebhookEvent(raw)
	if err != nil {
		h.log.Warn().Err(err).Msg("unparsable webhook payload")
		response.Error(c, apperror.ErrUnparsablePayload())
		return
	}

	// Ack first, process later. Enqueue is non-blocking; a full queue drops
	// the event and the gateway's retry redelivers it.
	if !h.queue.Enqueue(ev) {
		h.log.Warn().Str("event", ev.Event).Msg("webhook event not enqueued")
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
