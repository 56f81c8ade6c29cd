package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"

	"github.com/rs/zerolog"
)

const processedEventTTL = 24 * time.Hour

// PaymentEventProcessor turns a verified gateway event into at most one
// wallet credit. Duplicate suppression is layered: a redis fast path, a
// ledger lookup, and finally the unique constraint on the idempotency key.
// Only the last one is authoritative; the first two just save work.
type PaymentEventProcessor struct {
	walletSvc ports.WalletService
	txRepo    ports.TransactionRepository
	cache     ports.ProcessedEventCache
	log       zerolog.Logger
}

// NewPaymentEventProcessor creates a new PaymentEventProcessor. cache may be
// nil when redis is unavailable; the processor then relies on the ledger
// alone.
func NewPaymentEventProcessor(
	walletSvc ports.WalletService,
	txRepo ports.TransactionRepository,
	cache ports.ProcessedEventCache,
	log zerolog.Logger,
) *PaymentEventProcessor {
	return &PaymentEventProcessor{
		walletSvc: walletSvc,
		txRepo:    txRepo,
		cache:     cache,
		log:       log,
	}
}

// Process applies one webhook event. Returning nil means the event is fully
// handled, including the cases where it is ignored on purpose: non-capture
// kinds, events without an owner in notes, and duplicate deliveries.
func (p *PaymentEventProcessor) Process(ctx context.Context, ev *domain.WebhookEvent) error {
	if !ev.IsCaptured() {
		p.log.Debug().Str("event", ev.Event).Msg("ignoring non-capture webhook event")
		return nil
	}

	payment := ev.Payload.Payment.Entity
	if payment.ID == "" {
		p.log.Warn().Str("event", ev.Event).Msg("capture event without payment id, dropping")
		return nil
	}
	if payment.Notes.OwnerID == "" {
		// The order was created without owner notes, so there is no wallet
		// to credit. Acknowledged and dropped, matching gateway semantics
		// where an unattributable payment stays with the platform.
		p.log.Warn().
			Str("payment_id", payment.ID).
			Msg("capture event without owner notes, dropping")
		return nil
	}

	if p.cache != nil {
		seen, err := p.cache.Seen(ctx, payment.ID)
		if err != nil {
			p.log.Warn().Err(err).Str("payment_id", payment.ID).Msg("processed-event cache lookup failed")
		} else if seen {
			p.log.Info().Str("payment_id", payment.ID).Msg("duplicate webhook delivery, already processed")
			return nil
		}
	}

	key := domain.GatewayIdempotencyKey(payment.ID)
	existing, err := p.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency pre-check: %w", err)
	}
	if existing != nil {
		p.log.Info().
			Str("payment_id", payment.ID).
			Str("transaction_id", existing.ID.String()).
			Msg("payment already credited, skipping")
		p.markSeen(ctx, payment.ID)
		return nil
	}

	meta, err := json.Marshal(map[string]string{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"method":     payment.Method,
		"event":      ev.Event,
	})
	if err != nil {
		return fmt.Errorf("encoding transaction meta: %w", err)
	}

	// The reason doubles as the statement-visible trace back to the
	// processor payment, same format as the idempotency key.
	wallet, txn, err := p.walletSvc.Credit(ctx, ports.MutationRequest{
		OwnerID:        payment.Notes.OwnerID,
		OwnerType:      domain.ParseOwnerType(payment.Notes.OwnerType),
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		Reason:         key,
		IdempotencyKey: &key,
		Meta:           meta,
	})
	if err != nil {
		// A concurrent delivery won the insert race. That is success from
		// this delivery's point of view.
		if errors.Is(err, ports.ErrDuplicateIdempotencyKey) {
			p.log.Info().Str("payment_id", payment.ID).Msg("lost idempotency race, payment already credited")
			p.markSeen(ctx, payment.ID)
			return nil
		}
		return fmt.Errorf("crediting wallet for payment %s: %w", payment.ID, err)
	}

	p.log.Info().
		Str("payment_id", payment.ID).
		Str("wallet_id", wallet.ID.String()).
		Str("transaction_id", txn.ID.String()).
		Int64("amount", payment.Amount).
		Msg("payment captured, wallet credited")

	p.markSeen(ctx, payment.ID)
	return nil
}

func (p *PaymentEventProcessor) markSeen(ctx context.Context, paymentID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.MarkSeen(ctx, paymentID, processedEventTTL); err != nil {
		p.log.Warn().Err(err).Str("payment_id", paymentID).Msg("failed to mark event as processed")
	}
}
