package webhook_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(url string) entities.Order {
	return entities.Order{
		TrackingCode:    "A1B2C3D4",
		ExternalOrderID: "ext-1",
		WebhookURL:      url,
		Status:          entities.StatusInTransit,
		Location:        "Centro de distribución",
		UpdatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifier_Notify(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("delivers payload", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		n := webhook.NewNotifier(logger, time.Second)
		n.Notify(newTestOrder(srv.URL))

		assert.Equal(t, "A1B2C3D4", got["codigo_seguimiento"])
		assert.Equal(t, "ext-1", got["id_orden_externa"])
		assert.Equal(t, entities.StatusInTransit.Display(), got["estado_actual"])
		assert.Equal(t, "Centro de distribución", got["ubicacion_actual"])
		assert.Equal(t, "2025-06-01T12:00:00Z", got["fecha_actualizacion"])
	})

	t.Run("non-2xx response is swallowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		n := webhook.NewNotifier(logger, time.Second)
		n.Notify(newTestOrder(srv.URL))
	})

	t.Run("unreachable URL is swallowed", func(t *testing.T) {
		n := webhook.NewNotifier(logger, 100*time.Millisecond)
		n.Notify(newTestOrder("http://127.0.0.1:1/webhook"))
	})

	t.Run("no URL means no request", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		n := webhook.NewNotifier(logger, time.Second)
		n.Notify(newTestOrder(""))
		assert.False(t, called)
	})
}
