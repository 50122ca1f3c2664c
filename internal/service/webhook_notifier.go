package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
	"walletstore/pkg/apperror"

	"github.com/rs/zerolog"
)

// DefaultRetryIntervals are the waits between webhook delivery attempts.
var DefaultRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

const (
	EventReceiptSaved = "RECEIPT_SAVED"

	HeaderSignature = "X-Walletstore-Signature"
	HeaderTimestamp = "X-Walletstore-Timestamp"
)

// WebhookPayload is the JSON body POSTed for each saved receipt.
type WebhookPayload struct {
	EventType string         `json:"event_type"`
	Data      WebhookReceipt `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

// WebhookReceipt is the receipt as delivered to the webhook.
type WebhookReceipt struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	Data       map[string]string `json:"data"`
	ReceivedAt string            `json:"received_at,omitempty"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookOptions configures a WebhookNotifier.
type WebhookOptions struct {
	URL    string
	Secret string
	// PollTimeout bounds each blocking dequeue.
	PollTimeout    time.Duration
	RetryIntervals []time.Duration
}

// WebhookNotifier drains the receipt queue and POSTs each receipt, signed
// with HMAC-SHA256 over "<timestamp>.<body>", to a configured URL.
type WebhookNotifier struct {
	source    ports.ReceiptSource
	walletSvc ports.WalletService
	signer    *HMACSignatureService
	client    HTTPClient
	opts      WebhookOptions
	log       zerolog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(
	source ports.ReceiptSource,
	walletSvc ports.WalletService,
	signer *HMACSignatureService,
	client HTTPClient,
	opts WebhookOptions,
	log zerolog.Logger,
) *WebhookNotifier {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	if opts.RetryIntervals == nil {
		opts.RetryIntervals = DefaultRetryIntervals
	}
	return &WebhookNotifier{
		source:    source,
		walletSvc: walletSvc,
		signer:    signer,
		client:    client,
		opts:      opts,
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Run consumes receipt keys until ctx is cancelled. Delivery failures are
// logged and the key is dropped.
func (n *WebhookNotifier) Run(ctx context.Context) error {
	n.log.Info().Str("url", n.opts.URL).Msg("webhook: notifier started")
	defer n.log.Info().Msg("webhook: notifier stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		key, err := n.source.Dequeue(ctx, n.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			n.log.Warn().Err(err).Msg("webhook: dequeue failed")
			if n.sleep(ctx, time.Second) != nil {
				return nil
			}
			continue
		}
		if key == "" {
			continue
		}

		if err := n.Notify(ctx, key); err != nil {
			n.log.Error().Err(err).Str("key", key).Msg("webhook: notification dropped")
		}
	}
}

// Notify loads the receipt at key and delivers it. A receipt that no longer
// exists is skipped.
func (n *WebhookNotifier) Notify(ctx context.Context, key string) error {
	rec, err := n.walletSvc.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound("")) {
			n.log.Warn().Str("key", key).Msg("webhook: receipt vanished, skipping")
			return nil
		}
		return err
	}

	receipt := domain.ReceiptFromRecord(rec)
	payload := WebhookPayload{
		EventType: EventReceiptSaved,
		Data: WebhookReceipt{
			ID:   receipt.ID,
			Key:  receipt.Key,
			Data: receipt.Data,
		},
		Timestamp: n.now().Unix(),
	}
	if !receipt.ReceivedAt.IsZero() {
		payload.Data.ReceivedAt = domain.FormatTime(receipt.ReceivedAt)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	return n.deliver(ctx, receipt.ID, body)
}

func (n *WebhookNotifier) deliver(ctx context.Context, receiptID string, body []byte) error {
	attempts := len(n.opts.RetryIntervals) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := n.sleep(ctx, n.opts.RetryIntervals[attempt-1]); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build webhook request: %w", err)
		}
		ts, sig := n.signer.SignDelivery(n.opts.Secret, n.now(), body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderTimestamp, ts)
		req.Header.Set(HeaderSignature, sig)

		resp, err := n.client.Do(req)
		if err != nil {
			n.log.Warn().Err(err).Str("receipt_id", receiptID).Int("attempt", attempt+1).Msg("webhook: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Info().Str("receipt_id", receiptID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: delivered")
			return nil
		}

		n.log.Warn().Str("receipt_id", receiptID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: non-2xx response, retrying")
	}

	return fmt.Errorf("webhook for receipt %s: all %d attempts failed", receiptID, attempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
