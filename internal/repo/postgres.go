package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var orderColumns = []string{
	"codigo_seguimiento", "id_orden_externa", "id_orden_original",
	"servicio_origen", "webhook_url", "datos_cliente_json", "productos_json",
	"estado_interno", "estado_actual", "ubicacion_actual",
	"fecha_creacion", "fecha_actualizacion", "cierre_diario",
}

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	customerData, err := marshalCustomer(o.Customer)
	if err != nil {
		return err
	}
	productsData, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	query, args := r.qb.Insert("ordenes").
		Columns(orderColumns...).
		Values(
			o.TrackingCode, o.ExternalOrderID, o.OriginalOrderID,
			o.OriginService, nullString(o.WebhookURL), customerData, productsData,
			string(o.Status), o.DisplayStatus(), o.Location,
			o.CreatedAt, o.UpdatedAt, o.DailyClosure,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		// Уникальный констрейнт в БД — настоящая защита от гонки при
		// одновременной отправке дубликатов.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &entities.DuplicateOrderError{
				ExternalOrderID: o.ExternalOrderID,
				OriginService:   o.OriginService,
			}
		}
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByTrackingCode(ctx context.Context, trackingCode string) (entities.Order, error) {
	query, args := r.selectOrders().
		Where(sq.Eq{"codigo_seguimiento": trackingCode}).
		MustSql()

	return r.getOrder(ctx, query, args...)
}

func (r *postgresRepo) GetByExternalOrder(ctx context.Context, externalOrderID, originService string) (entities.Order, error) {
	query, args := r.selectOrders().
		Where(sq.Eq{"id_orden_externa": externalOrderID, "servicio_origen": originService}).
		MustSql()

	return r.getOrder(ctx, query, args...)
}

func (r *postgresRepo) getOrder(ctx context.Context, query string, args ...any) (entities.Order, error) {
	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return OrderToEntity(order)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Update("ordenes").
		Set("estado_interno", string(o.Status)).
		Set("estado_actual", o.DisplayStatus()).
		Set("ubicacion_actual", o.Location).
		Set("fecha_actualizacion", o.UpdatedAt).
		Set("cierre_diario", o.DailyClosure).
		Where(sq.Eq{"codigo_seguimiento": o.TrackingCode}).
		MustSql()

	return r.execExpectingRow(ctx, query, args...)
}

func (r *postgresRepo) UpdateCustomerData(ctx context.Context, trackingCode string, customer entities.Customer, updatedAt time.Time) error {
	customerData, err := marshalCustomer(customer)
	if err != nil {
		return err
	}

	query, args := r.qb.Update("ordenes").
		Set("datos_cliente_json", customerData).
		Set("fecha_actualizacion", updatedAt).
		Where(sq.Eq{"codigo_seguimiento": trackingCode}).
		MustSql()

	return r.execExpectingRow(ctx, query, args...)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]entities.Order, error) {
	query, args := r.selectOrders().
		OrderBy("fecha_creacion DESC").
		MustSql()

	return r.listOrders(ctx, query, args...)
}

func (r *postgresRepo) ListClosed(ctx context.Context) ([]entities.Order, error) {
	query, args := r.selectOrders().
		Where(sq.Eq{"cierre_diario": true}).
		OrderBy("fecha_creacion DESC").
		MustSql()

	return r.listOrders(ctx, query, args...)
}

func (r *postgresRepo) listOrders(ctx context.Context, query string, args ...any) ([]entities.Order, error) {
	var rows []Order
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	orders := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		order, err := OrderToEntity(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *postgresRepo) selectOrders() sq.SelectBuilder {
	return r.qb.Select(orderColumns...).Column("id").From("ordenes")
}

func (r *postgresRepo) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
