package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"applygate/internal/app"
	"applygate/internal/http/metrics"
)

// SignatureVerifier checks a webhook signature against the exact raw request
// bytes. Implemented by the gateway client.
type SignatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type WebhookHandler struct {
	payments  *app.PaymentService
	verifier  SignatureVerifier
	collector *metrics.Collector
	logger    *slog.Logger
}

func NewWebhookHandler(payments *app.PaymentService, verifier SignatureVerifier, collector *metrics.Collector, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{payments: payments, verifier: verifier, collector: collector, logger: logger}
}

// Paystack receives gateway webhooks. The signature is checked over the raw
// body before anything else; verified deliveries are acknowledged immediately
// and processed afterwards so the gateway's retry timer never fires on a slow
// handler.
func (h *WebhookHandler) Paystack(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	signature := r.Header.Get("x-paystack-signature")
	if !h.verifier.VerifyWebhookSignature(body, signature) {
		if h.collector != nil {
			h.collector.IncWebhooksRejected()
		}
		h.logger.Warn("webhook signature rejected")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if h.collector != nil {
		h.collector.IncWebhooksAccepted()
	}
	w.WriteHeader(http.StatusOK)

	// Already acknowledged; failures from here on are logged and dropped.
	go func(payload []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.payments.ProcessWebhook(ctx, payload); err != nil {
			h.logger.Error("webhook processing failed", "error", err)
		}
	}(body)
}
