package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
)

// Notifier delivers status-change notifications to the per-order callback
// URL. Delivery is best effort: no retries, failures are logged and counted
// but never reach the caller.
type Notifier struct {
	logger  *slog.Logger
	client  *http.Client
	timeout time.Duration
}

func NewNotifier(logger *slog.Logger, timeout time.Duration) *Notifier {
	return &Notifier{
		logger:  logger.With(slog.String("component", "webhook")),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

type payload struct {
	TrackingCode    string `json:"codigo_seguimiento"`
	ExternalOrderID string `json:"id_orden_externa"`
	DisplayStatus   string `json:"estado_actual"`
	Location        string `json:"ubicacion_actual"`
	UpdatedAt       string `json:"fecha_actualizacion"`
}

// Notify posts the status payload to the order's webhook URL. It owns its
// own deadline and must not inherit the request context: the triggering API
// call completes independently of delivery.
func (n *Notifier) Notify(order entities.Order) {
	if order.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(payload{
		TrackingCode:    order.TrackingCode,
		ExternalOrderID: order.ExternalOrderID,
		DisplayStatus:   order.DisplayStatus(),
		Location:        order.Location,
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		n.fail(order, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, order.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.fail(order, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.fail(order, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		webhooksFailed.Inc()
		n.logger.Error("webhook delivery rejected",
			slog.String("tracking_code", order.TrackingCode),
			slog.String("url", order.WebhookURL),
			slog.Int("status", resp.StatusCode),
		)
		return
	}

	webhooksDelivered.Inc()
	n.logger.Debug("webhook delivered",
		slog.String("tracking_code", order.TrackingCode),
		slog.String("url", order.WebhookURL),
	)
}

func (n *Notifier) fail(order entities.Order, err error) {
	webhooksFailed.Inc()
	n.logger.Error("webhook delivery failed",
		slog.String("tracking_code", order.TrackingCode),
		slog.String("url", order.WebhookURL),
		slog.Any("error", err),
	)
}
