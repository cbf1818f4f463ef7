package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/internal/service"
	"github.com/ElRublo/gestion-envios/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (entities.Order, error)
	GetOrderByTrackingCode(ctx context.Context, trackingCode string) (entities.Order, error)
	UpdateStatus(ctx context.Context, trackingCode, rawStatus, location string) (entities.Order, error)
	UpdateAddress(ctx context.Context, trackingCode, newAddress string) (entities.Order, error)
	ListOrders(ctx context.Context) ([]entities.Order, error)
	DailyClosureReport(ctx context.Context) (entities.ClosureReport, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/ordenes", h.CreateOrder)
	r.Get("/ordenes/{tracking_code}", h.GetOrderStatus)

	r.Route("/interna", func(r chi.Router) {
		r.Get("/ordenes", h.ListOrders)
		r.Get("/ordenes-completa/{tracking_code}", h.GetFullOrder)
		r.Patch("/ordenes/{tracking_code}/estado", h.UpdateStatus)
		r.Patch("/ordenes/{tracking_code}/direccion", h.UpdateAddress)
		r.Get("/cierre-diario", h.DailyClosure)
	})
}

// CreateOrder регистрирует новую заявку на отправку.
// @Summary      Создать заказ на отправку
// @Tags         ordenes
// @Accept       json
// @Param        request body CreateOrderRequest true "Данные заказа"
// @Success      201  {object}  ShipmentStatus
// @Failure      400  {object}  utils.ErrorResponse "Дубликат или ошибка валидации"
// @Router       /ordenes [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.CreateOrder(ctx, CreateOrderJSONToInput(req))
	if errors.Is(err, entities.ErrDuplicateOrder) {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.internalError(ctx, w, "failed to create order", err)
		return
	}

	utils.WriteJSON(w, ShipmentStatusFromEntity(order), http.StatusCreated)
}

// GetOrderStatus возвращает статус заказа по коду отслеживания.
// @Summary      Статус заказа
// @Tags         ordenes
// @Param        tracking_code path string true "Код отслеживания"
// @Success      200  {object}  ShipmentStatus
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /ordenes/{tracking_code} [get]
func (h *HTTPHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trackingCode := chi.URLParam(r, "tracking_code")

	order, err := h.svc.GetOrderByTrackingCode(ctx, trackingCode)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "tracking code not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(ctx, w, "failed to get order", err)
		return
	}

	utils.WriteJSON(w, ShipmentStatusFromEntity(order), http.StatusOK)
}

// GetFullOrder возвращает полную проекцию заказа.
// @Summary      Полный заказ (внутренний)
// @Tags         interna
// @Param        tracking_code path string true "Код отслеживания"
// @Success      200  {object}  FullOrder
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /interna/ordenes-completa/{tracking_code} [get]
func (h *HTTPHandler) GetFullOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trackingCode := chi.URLParam(r, "tracking_code")

	order, err := h.svc.GetOrderByTrackingCode(ctx, trackingCode)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(ctx, w, "failed to get order", err)
		return
	}

	utils.WriteJSON(w, FullOrderFromEntity(order), http.StatusOK)
}

// UpdateStatus меняет статус заказа и возвращает полную проекцию.
// @Summary      Обновить статус заказа
// @Tags         interna
// @Param        tracking_code path string true "Код отслеживания"
// @Param        request body UpdateStatusRequest true "Новый статус и локация"
// @Success      200  {object}  FullOrder
// @Failure      400  {object}  utils.ErrorResponse "Неизвестный статус"
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /interna/ordenes/{tracking_code}/estado [patch]
func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trackingCode := chi.URLParam(r, "tracking_code")

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.UpdateStatus(ctx, trackingCode, req.Status, req.Location)
	if errors.Is(err, entities.ErrInvalidStatus) {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "tracking code not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(ctx, w, "failed to update status", err)
		return
	}

	utils.WriteJSON(w, FullOrderFromEntity(order), http.StatusOK)
}

// UpdateAddress меняет адрес доставки, пока заказ не доставлен.
// @Summary      Обновить адрес доставки
// @Tags         interna
// @Param        tracking_code path string true "Код отслеживания"
// @Param        request body UpdateAddressRequest true "Новый адрес"
// @Success      200  {object}  AddressUpdated
// @Failure      400  {object}  utils.ErrorResponse "Заказ уже доставлен"
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /interna/ordenes/{tracking_code}/direccion [patch]
func (h *HTTPHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trackingCode := chi.URLParam(r, "tracking_code")

	var req UpdateAddressRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.UpdateAddress(ctx, trackingCode, req.NewAddress)
	if errors.Is(err, entities.ErrOrderDelivered) {
		utils.WriteError(w, "cannot change address of a delivered order", http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "tracking code not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(ctx, w, "failed to update address", err)
		return
	}

	utils.WriteJSON(w, AddressUpdated{
		Message:         "Dirección actualizada correctamente",
		ExternalOrderID: order.ExternalOrderID,
		TrackingCode:    order.TrackingCode,
		NewAddress:      req.NewAddress,
	}, http.StatusOK)
}

// ListOrders возвращает все заказы, новые сверху.
// @Summary      Все заказы (внутренний)
// @Tags         interna
// @Success      200  {array}   OrderSummary
// @Router       /interna/ordenes [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.svc.ListOrders(ctx)
	if err != nil {
		h.internalError(ctx, w, "failed to list orders", err)
		return
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummaryFromEntity(o))
	}

	utils.WriteJSON(w, summaries, http.StatusOK)
}

// DailyClosure возвращает дневной отчёт по доставленным заказам.
// @Summary      Дневной отчёт (внутренний)
// @Tags         interna
// @Success      200  {object}  ClosureReport
// @Router       /interna/cierre-diario [get]
func (h *HTTPHandler) DailyClosure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.svc.DailyClosureReport(ctx)
	if err != nil {
		h.internalError(ctx, w, "failed to build closure report", err)
		return
	}

	utils.WriteJSON(w, ClosureReportFromEntity(report), http.StatusOK)
}

func (h *HTTPHandler) internalError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	utils.WriteError(w, "internal server error", http.StatusInternalServerError)
}
