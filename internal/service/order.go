package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/pkg/trm"

	"github.com/google/uuid"
)

type OrderRepo interface {
	SaveOrder(ctx context.Context, o entities.Order) error
	GetByTrackingCode(ctx context.Context, trackingCode string) (entities.Order, error)
	GetByExternalOrder(ctx context.Context, externalOrderID, originService string) (entities.Order, error)
	UpdateStatus(ctx context.Context, o entities.Order) error
	UpdateCustomerData(ctx context.Context, trackingCode string, customer entities.Customer, updatedAt time.Time) error
	ListAll(ctx context.Context) ([]entities.Order, error)
	ListClosed(ctx context.Context) ([]entities.Order, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Notifier delivers a status-change notification. Implementations must be
// safe to call from a detached goroutine and must not return delivery
// failures to the caller.
type Notifier interface {
	Notify(order entities.Order)
}

type CreateOrderInput struct {
	ExternalOrderID string
	OriginalOrderID string
	OriginService   string
	WebhookURL      string
	Customer        entities.Customer
	Items           []entities.Item
}

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      OrderRepo
	cache     Cache
	notifier  Notifier
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, cache Cache, notifier Notifier) *orderService {
	return &orderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		repo:      repo,
		cache:     cache,
		notifier:  notifier,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (entities.Order, error) {
	var order entities.Order

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// Предварительная проверка нужна только ради понятной ошибки с кодом
		// отслеживания существующей заказки, гарантия — уникальный
		// констрейнт в БД.
		existing, err := s.repo.GetByExternalOrder(ctx, in.ExternalOrderID, in.OriginService)
		if err == nil {
			return &entities.DuplicateOrderError{
				ExternalOrderID: in.ExternalOrderID,
				OriginService:   in.OriginService,
				TrackingCode:    existing.TrackingCode,
			}
		}
		if !errors.Is(err, entities.ErrOrderNotFound) {
			return err
		}

		now := time.Now()
		order = entities.Order{
			TrackingCode:    newTrackingCode(),
			ExternalOrderID: in.ExternalOrderID,
			OriginalOrderID: in.OriginalOrderID,
			OriginService:   in.OriginService,
			WebhookURL:      in.WebhookURL,
			Customer:        in.Customer,
			Items:           in.Items,
			Status:          entities.StatusReceived,
			Location:        fmt.Sprintf("Solicitud recibida de %s", in.OriginService),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		return s.repo.SaveOrder(ctx, order)
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.cacheSet(order)
	s.logger.Debug("order created",
		slog.String("tracking_code", order.TrackingCode),
		slog.String("origin_service", order.OriginService),
	)
	return order, nil
}

func (s *orderService) GetOrderByTrackingCode(ctx context.Context, trackingCode string) (entities.Order, error) {
	if data, ok := s.cache.Get(trackingCode); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err != nil {
			s.logger.Error("failed to unmarshal cached order",
				slog.String("tracking_code", trackingCode), slog.Any("error", err))
			return entities.Order{}, err
		}
		return order, nil
	}

	order, err := s.repo.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return entities.Order{}, err
	}

	s.cacheSet(order)
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, trackingCode, rawStatus, location string) (entities.Order, error) {
	status, err := entities.ParseStatus(rawStatus)
	if err != nil {
		return entities.Order{}, err
	}

	var order entities.Order
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err = s.repo.GetByTrackingCode(ctx, trackingCode)
		if err != nil {
			return err
		}

		order.Status = status
		order.Location = location
		order.UpdatedAt = time.Now()
		if status == entities.StatusDelivered {
			// Одностороннее закрытие для дневного отчёта, обратно не снимается.
			order.DailyClosure = true
		}

		return s.repo.UpdateStatus(ctx, order)
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.cacheSet(order)
	s.logger.Debug("order status updated",
		slog.String("tracking_code", order.TrackingCode),
		slog.String("status", string(order.Status)),
	)

	if order.WebhookURL != "" {
		go s.notifier.Notify(order)
	}

	return order, nil
}

func (s *orderService) UpdateAddress(ctx context.Context, trackingCode, newAddress string) (entities.Order, error) {
	var order entities.Order

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByTrackingCode(ctx, trackingCode)
		if err != nil {
			return err
		}

		if order.Status == entities.StatusDelivered {
			return entities.ErrOrderDelivered
		}

		order.Customer.Address = newAddress
		order.UpdatedAt = time.Now()

		return s.repo.UpdateCustomerData(ctx, trackingCode, order.Customer, order.UpdatedAt)
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.cacheSet(order)
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]entities.Order, error) {
	var orders []entities.Order
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		orders, err = s.repo.ListAll(ctx)
		return err
	})
	return orders, err
}

func (s *orderService) DailyClosureReport(ctx context.Context) (entities.ClosureReport, error) {
	var closed []entities.Order
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		closed, err = s.repo.ListClosed(ctx)
		return err
	})
	if err != nil {
		return entities.ClosureReport{}, err
	}

	entries := make([]entities.ClosureEntry, 0, len(closed))
	for _, o := range closed {
		entries = append(entries, entities.ClosureEntry{
			ExternalOrderID: o.ExternalOrderID,
			TrackingCode:    o.TrackingCode,
			OriginService:   o.OriginService,
			Customer:        fmt.Sprintf("%s (%s)", o.Customer.Name, o.Customer.Address),
			ProductCount:    len(o.Items),
			OnTime:          "Sí (Simulado)",
			Status:          o.DisplayStatus(),
		})
	}

	return entities.ClosureReport{
		Date:    time.Now(),
		Total:   len(entries),
		Entries: entries,
	}, nil
}

func (s *orderService) cacheSet(order entities.Order) {
	data, err := order.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal order for cache",
			slog.String("tracking_code", order.TrackingCode), slog.Any("error", err))
		return
	}
	s.cache.Set(order.TrackingCode, data)
}

// newTrackingCode derives the customer-facing code from a random UUID:
// the first segment, uppercased (8 hex chars).
func newTrackingCode() string {
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}
