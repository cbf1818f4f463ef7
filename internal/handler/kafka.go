package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ElRublo/gestion-envios/internal/config"
	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/internal/service"
	"github.com/ElRublo/gestion-envios/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (entities.Order, error)
}

type kafkaHandler struct {
	dlq      *kafka.Writer
	reader   *kafka.Reader
	logger   *slog.Logger
	validate *validator.Validate
	creator  OrderCreator
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, creator OrderCreator) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate: validator.New(),
		creator:  creator,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			}
			h.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		if err := h.handleCreateOrder(ctx, m); err != nil {
			// Дубликат — это нормальный исход для повторно отправленного
			// сообщения, в DLQ он не нужен.
			if errors.Is(err, entities.ErrDuplicateOrder) {
				h.logger.Warn("duplicate order skipped", slog.Any("error", err))
			} else {
				h.logger.Error("failed to handle message", slog.Any("error", err))
				ordersDLQ.Inc()

				if err := h.WriteToDLQ(ctx, m); err != nil {
					h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
					continue
				}
			}
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) handleCreateOrder(ctx context.Context, m kafka.Message) error {
	var req CreateOrderRequest
	if err := json.Unmarshal(m.Value, &req); err != nil {
		ordersFailed.Inc()
		return fmt.Errorf("failed to unmarshal order: %w", err)
	}

	if err := h.validate.Struct(req); err != nil {
		ordersFailed.Inc()
		return fmt.Errorf("invalid order data: %w", err)
	}

	// Ретрай только здесь: HTTP-путь отдаёт ошибки вызывающему сразу.
	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  5,
		Multiplier:   2,
	}
	err := utils.Retry(cfg, func() error {
		_, err := h.creator.CreateOrder(ctx, CreateOrderJSONToInput(req))
		return err
	}, entities.ErrDuplicateOrder)
	if err != nil {
		if !errors.Is(err, entities.ErrDuplicateOrder) {
			ordersFailed.Inc()
		}
		return err
	}

	ordersCreated.Inc()
	return nil
}

func (h *kafkaHandler) WriteToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
