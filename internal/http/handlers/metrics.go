package handlers

import (
	"fmt"
	"net/http"

	"applygate/internal/http/metrics"
)

type MetricsHandler struct {
	collector *metrics.Collector
}

func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{collector: collector}
}

func (h *MetricsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	var snap metrics.Snapshot
	if h.collector != nil {
		snap = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = fmt.Fprintf(w, "# HELP applygate_requests_total Total number of HTTP requests.\n")
	_, _ = fmt.Fprintf(w, "# TYPE applygate_requests_total counter\n")
	_, _ = fmt.Fprintf(w, "applygate_requests_total %d\n", snap.Requests)
	_, _ = fmt.Fprintf(w, "# HELP applygate_errors_total Total number of 5xx HTTP responses.\n")
	_, _ = fmt.Fprintf(w, "# TYPE applygate_errors_total counter\n")
	_, _ = fmt.Fprintf(w, "applygate_errors_total %d\n", snap.Errors)
	_, _ = fmt.Fprintf(w, "# HELP applygate_webhooks_accepted_total Webhook deliveries with a valid signature.\n")
	_, _ = fmt.Fprintf(w, "# TYPE applygate_webhooks_accepted_total counter\n")
	_, _ = fmt.Fprintf(w, "applygate_webhooks_accepted_total %d\n", snap.WebhooksAccepted)
	_, _ = fmt.Fprintf(w, "# HELP applygate_webhooks_rejected_total Webhook deliveries rejected at the signature check.\n")
	_, _ = fmt.Fprintf(w, "# TYPE applygate_webhooks_rejected_total counter\n")
	_, _ = fmt.Fprintf(w, "applygate_webhooks_rejected_total %d\n", snap.WebhooksRejected)
}
