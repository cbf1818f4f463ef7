package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
)

type Order struct {
	ID              int64          `db:"id"`
	TrackingCode    string         `db:"codigo_seguimiento"`
	ExternalOrderID string         `db:"id_orden_externa"`
	OriginalOrderID string         `db:"id_orden_original"`
	OriginService   string         `db:"servicio_origen"`
	WebhookURL      sql.NullString `db:"webhook_url"`
	CustomerData    string         `db:"datos_cliente_json"`
	ProductsData    string         `db:"productos_json"`
	InternalStatus  string         `db:"estado_interno"`
	DisplayStatus   string         `db:"estado_actual"`
	Location        string         `db:"ubicacion_actual"`
	CreatedAt       time.Time      `db:"fecha_creacion"`
	UpdatedAt       time.Time      `db:"fecha_actualizacion"`
	DailyClosure    bool           `db:"cierre_diario"`
}

// Customer and product data live in the table as opaque serialized blobs,
// they are not queryable by sub-field.
type customerJSON struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email,omitempty"`
}

type productJSON struct {
	SKU            string  `json:"sku"`
	Nombre         string  `json:"nombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
}

func marshalCustomer(c entities.Customer) (string, error) {
	data, err := json.Marshal(customerJSON{
		Nombre:    c.Name,
		Direccion: c.Address,
		Telefono:  c.Phone,
		Email:     c.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal customer data: %w", err)
	}
	return string(data), nil
}

func unmarshalCustomer(data string) (entities.Customer, error) {
	var c customerJSON
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return entities.Customer{}, fmt.Errorf("failed to unmarshal customer data: %w", err)
	}
	return entities.Customer{
		Name:    c.Nombre,
		Address: c.Direccion,
		Phone:   c.Telefono,
		Email:   c.Email,
	}, nil
}

func marshalItems(items []entities.Item) (string, error) {
	products := make([]productJSON, 0, len(items))
	for _, it := range items {
		products = append(products, productJSON{
			SKU:            it.SKU,
			Nombre:         it.Name,
			Cantidad:       it.Quantity,
			PrecioUnitario: it.UnitPrice,
		})
	}

	data, err := json.Marshal(products)
	if err != nil {
		return "", fmt.Errorf("failed to marshal products: %w", err)
	}
	return string(data), nil
}

func unmarshalItems(data string) ([]entities.Item, error) {
	var products []productJSON
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	items := make([]entities.Item, 0, len(products))
	for _, p := range products {
		items = append(items, entities.Item{
			SKU:       p.SKU,
			Name:      p.Nombre,
			Quantity:  p.Cantidad,
			UnitPrice: p.PrecioUnitario,
		})
	}
	return items, nil
}

func OrderToEntity(o Order) (entities.Order, error) {
	customer, err := unmarshalCustomer(o.CustomerData)
	if err != nil {
		return entities.Order{}, err
	}

	items, err := unmarshalItems(o.ProductsData)
	if err != nil {
		return entities.Order{}, err
	}

	return entities.Order{
		TrackingCode:    o.TrackingCode,
		ExternalOrderID: o.ExternalOrderID,
		OriginalOrderID: o.OriginalOrderID,
		OriginService:   o.OriginService,
		WebhookURL:      nullStringToString(o.WebhookURL),
		Customer:        customer,
		Items:           items,
		Status:          entities.Status(o.InternalStatus),
		Location:        o.Location,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		DailyClosure:    o.DailyClosure,
	}, nil
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
