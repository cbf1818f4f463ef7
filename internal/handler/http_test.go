package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/internal/handler"
	"github.com/ElRublo/gestion-envios/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	createFn  func(ctx context.Context, in service.CreateOrderInput) (entities.Order, error)
	getFn     func(ctx context.Context, trackingCode string) (entities.Order, error)
	statusFn  func(ctx context.Context, trackingCode, rawStatus, location string) (entities.Order, error)
	addressFn func(ctx context.Context, trackingCode, newAddress string) (entities.Order, error)
	listFn    func(ctx context.Context) ([]entities.Order, error)
	reportFn  func(ctx context.Context) (entities.ClosureReport, error)
}

func (s *fakeService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (entities.Order, error) {
	return s.createFn(ctx, in)
}

func (s *fakeService) GetOrderByTrackingCode(ctx context.Context, trackingCode string) (entities.Order, error) {
	return s.getFn(ctx, trackingCode)
}

func (s *fakeService) UpdateStatus(ctx context.Context, trackingCode, rawStatus, location string) (entities.Order, error) {
	return s.statusFn(ctx, trackingCode, rawStatus, location)
}

func (s *fakeService) UpdateAddress(ctx context.Context, trackingCode, newAddress string) (entities.Order, error) {
	return s.addressFn(ctx, trackingCode, newAddress)
}

func (s *fakeService) ListOrders(ctx context.Context) ([]entities.Order, error) {
	return s.listFn(ctx)
}

func (s *fakeService) DailyClosureReport(ctx context.Context) (entities.ClosureReport, error) {
	return s.reportFn(ctx)
}

func newRouter(svc *fakeService) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, svc)
	r := chi.NewRouter()
	h.Init(r)
	return r
}

func sampleOrder() entities.Order {
	return entities.Order{
		TrackingCode:    "A1B2C3D4",
		ExternalOrderID: "ext-1",
		OriginalOrderID: "orig-1",
		OriginService:   "Tienda Uno",
		Customer:        entities.Customer{Name: "Ana Pérez", Address: "Av. Principal 123", Phone: "+56911111111"},
		Items:           []entities.Item{{SKU: "SKU-1", Name: "Zapatos", Quantity: 1, UnitPrice: 19990}},
		Status:          entities.StatusReceived,
		Location:        "Solicitud recibida de Tienda Uno",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

const validCreateBody = `{
	"id_orden_externa": "ext-1",
	"id_orden_original": "orig-1",
	"servicio_origen": "Tienda Uno",
	"datos_cliente": {"nombre": "Ana Pérez", "direccion": "Av. Principal 123", "telefono": "+56911111111"},
	"productos": [{"sku": "SKU-1", "nombre": "Zapatos", "cantidad": 1, "precio_unitario": 19990}]
}`

func TestHTTPHandler_CreateOrder(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		createFn   func(ctx context.Context, in service.CreateOrderInput) (entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: validCreateBody,
			createFn: func(_ context.Context, in service.CreateOrderInput) (entities.Order, error) {
				assert.Equal(t, "ext-1", in.ExternalOrderID)
				assert.Equal(t, "Tienda Uno", in.OriginService)
				assert.Len(t, in.Items, 1)
				return sampleOrder(), nil
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"codigo_seguimiento":"A1B2C3D4"`,
		},
		{
			name: "duplicate",
			body: validCreateBody,
			createFn: func(_ context.Context, _ service.CreateOrderInput) (entities.Order, error) {
				return entities.Order{}, &entities.DuplicateOrderError{
					ExternalOrderID: "ext-1",
					OriginService:   "Tienda Uno",
					TrackingCode:    "FFFF0000",
				}
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "FFFF0000",
		},
		{
			name:       "missing products",
			body:       `{"id_orden_externa": "ext-1", "id_orden_original": "orig-1", "servicio_origen": "Tienda Uno", "datos_cliente": {"nombre": "Ana", "direccion": "X", "telefono": "1"}, "productos": []}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"invalid request"`,
		},
		{
			name:       "zero quantity",
			body:       `{"id_orden_externa": "ext-1", "id_orden_original": "orig-1", "servicio_origen": "Tienda Uno", "datos_cliente": {"nombre": "Ana", "direccion": "X", "telefono": "1"}, "productos": [{"sku": "S", "nombre": "N", "cantidad": 0, "precio_unitario": 1}]}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"invalid request"`,
		},
		{
			name:       "broken body",
			body:       "{",
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
		{
			name: "internal error",
			body: validCreateBody,
			createFn: func(_ context.Context, _ service.CreateOrderInput) (entities.Order, error) {
				return entities.Order{}, errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&fakeService{createFn: tc.createFn})

			req := httptest.NewRequest(http.MethodPost, "/ordenes", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_GetOrderStatus(t *testing.T) {
	testCases := []struct {
		name       string
		getFn      func(ctx context.Context, trackingCode string) (entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "found",
			getFn: func(_ context.Context, trackingCode string) (entities.Order, error) {
				assert.Equal(t, "A1B2C3D4", trackingCode)
				return sampleOrder(), nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"estado_actual":"Solicitud Recibida"`,
		},
		{
			name: "not found",
			getFn: func(_ context.Context, _ string) (entities.Order, error) {
				return entities.Order{}, entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "tracking code not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&fakeService{getFn: tc.getFn})

			req := httptest.NewRequest(http.MethodGet, "/ordenes/A1B2C3D4", nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_GetFullOrder(t *testing.T) {
	r := newRouter(&fakeService{getFn: func(_ context.Context, _ string) (entities.Order, error) {
		return sampleOrder(), nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/interna/ordenes-completa/A1B2C3D4", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Tienda Uno", resp["servicio_origen"])

	cliente, ok := resp["cliente"].(map[string]any)
	require.True(t, ok, "cliente must be a structured object")
	assert.Equal(t, "Ana Pérez", cliente["nombre"])

	productos, ok := resp["productos"].([]any)
	require.True(t, ok, "productos must be a structured list")
	assert.Len(t, productos, 1)
}

func TestHTTPHandler_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		statusFn   func(ctx context.Context, trackingCode, rawStatus, location string) (entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "updated returns full order",
			body: `{"estado": "en camino", "ubicacion": "Ruta 5"}`,
			statusFn: func(_ context.Context, trackingCode, rawStatus, location string) (entities.Order, error) {
				assert.Equal(t, "A1B2C3D4", trackingCode)
				assert.Equal(t, "en camino", rawStatus)
				assert.Equal(t, "Ruta 5", location)
				order := sampleOrder()
				order.Status = entities.StatusInTransit
				order.Location = location
				return order, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"cliente":{`,
		},
		{
			name: "invalid status lists keys",
			body: `{"estado": "perdido", "ubicacion": "Bodega"}`,
			statusFn: func(_ context.Context, _, rawStatus, _ string) (entities.Order, error) {
				_, err := entities.ParseStatus(rawStatus)
				return entities.Order{}, err
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "ENTREGADO",
		},
		{
			name: "not found",
			body: `{"estado": "entregado", "ubicacion": "Puerta"}`,
			statusFn: func(_ context.Context, _, _, _ string) (entities.Order, error) {
				return entities.Order{}, entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "tracking code not found",
		},
		{
			name:       "missing location",
			body:       `{"estado": "entregado"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"invalid request"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&fakeService{statusFn: tc.statusFn})

			req := httptest.NewRequest(http.MethodPatch, "/interna/ordenes/A1B2C3D4/estado", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_UpdateAddress(t *testing.T) {
	testCases := []struct {
		name       string
		addressFn  func(ctx context.Context, trackingCode, newAddress string) (entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "updated",
			addressFn: func(_ context.Context, _, newAddress string) (entities.Order, error) {
				order := sampleOrder()
				order.Customer.Address = newAddress
				return order, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"nueva_direccion":"Calle Nueva 456"`,
		},
		{
			name: "delivered",
			addressFn: func(_ context.Context, _, _ string) (entities.Order, error) {
				return entities.Order{}, entities.ErrOrderDelivered
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "cannot change address of a delivered order",
		},
		{
			name: "not found",
			addressFn: func(_ context.Context, _, _ string) (entities.Order, error) {
				return entities.Order{}, entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "tracking code not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&fakeService{addressFn: tc.addressFn})

			body := `{"nueva_direccion": "Calle Nueva 456"}`
			req := httptest.NewRequest(http.MethodPatch, "/interna/ordenes/A1B2C3D4/direccion", strings.NewReader(body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_ListOrders(t *testing.T) {
	first := sampleOrder()
	second := sampleOrder()
	second.TrackingCode = "E5F6A7B8"
	second.ExternalOrderID = "ext-2"
	second.WebhookURL = "http://vendor.example/webhook"

	r := newRouter(&fakeService{listFn: func(_ context.Context) ([]entities.Order, error) {
		// Сервис уже отдаёт новые сверху.
		return []entities.Order{second, first}, nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/interna/ordenes", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "E5F6A7B8", resp[0]["codigo_seguimiento"])
	assert.Equal(t, "http://vendor.example/webhook", resp[0]["webhook_url"])
	assert.Equal(t, "A1B2C3D4", resp[1]["codigo_seguimiento"])
}

func TestHTTPHandler_DailyClosure(t *testing.T) {
	r := newRouter(&fakeService{reportFn: func(_ context.Context) (entities.ClosureReport, error) {
		return entities.ClosureReport{
			Date:  time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC),
			Total: 1,
			Entries: []entities.ClosureEntry{{
				ExternalOrderID: "ext-1",
				TrackingCode:    "A1B2C3D4",
				OriginService:   "Tienda Uno",
				Customer:        "Ana Pérez (Av. Principal 123)",
				ProductCount:    1,
				OnTime:          "Sí (Simulado)",
				Status:          entities.StatusDelivered.Display(),
			}},
		}, nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/interna/cierre-diario", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-01", resp["fecha_reporte"])
	assert.Equal(t, float64(1), resp["total_entregas_para_cierre"])

	entregas, ok := resp["entregas"].([]any)
	require.True(t, ok)
	require.Len(t, entregas, 1)
	entrega := entregas[0].(map[string]any)
	assert.Equal(t, "Ana Pérez (Av. Principal 123)", entrega["cliente"])
	assert.Equal(t, "Sí (Simulado)", entrega["entregado_a_tiempo"])
}
