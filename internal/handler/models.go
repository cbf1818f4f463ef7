package handler

import (
	"time"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/ElRublo/gestion-envios/internal/service"
)

// CreateOrderRequest представляет входящую заявку на отправку
type CreateOrderRequest struct {
	ExternalOrderID string       `json:"id_orden_externa" validate:"required"`
	OriginalOrderID string       `json:"id_orden_original" validate:"required"`
	OriginService   string       `json:"servicio_origen" validate:"required"`
	WebhookURL      string       `json:"webhook_url,omitempty" validate:"omitempty,url"`
	Customer        CustomerData `json:"datos_cliente" validate:"required"`
	Products        []Product    `json:"productos" validate:"required,min=1,dive"`
}

// CustomerData данные клиента
type CustomerData struct {
	Name    string `json:"nombre" validate:"required"`
	Address string `json:"direccion" validate:"required"`
	Phone   string `json:"telefono" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// Product товар в заказе
type Product struct {
	SKU       string  `json:"sku" validate:"required"`
	Name      string  `json:"nombre" validate:"required"`
	Quantity  int     `json:"cantidad" validate:"required,gte=1"`
	UnitPrice float64 `json:"precio_unitario" validate:"gte=0"`
}

// ShipmentStatus проекция для отслеживания
type ShipmentStatus struct {
	ExternalOrderID string    `json:"id_orden_externa"`
	TrackingCode    string    `json:"codigo_seguimiento"`
	DisplayStatus   string    `json:"estado_actual"`
	Location        string    `json:"ubicacion_actual"`
	UpdatedAt       time.Time `json:"fecha_actualizacion"`
}

// FullOrder полная проекция заказа
type FullOrder struct {
	ExternalOrderID string       `json:"id_orden_externa"`
	TrackingCode    string       `json:"codigo_seguimiento"`
	DisplayStatus   string       `json:"estado_actual"`
	Location        string       `json:"ubicacion_actual"`
	UpdatedAt       time.Time    `json:"fecha_actualizacion"`
	OriginService   string       `json:"servicio_origen"`
	Customer        CustomerData `json:"cliente"`
	Products        []Product    `json:"productos"`
}

// OrderSummary строка списка всех заказов
type OrderSummary struct {
	ExternalOrderID string    `json:"id_orden_externa"`
	TrackingCode    string    `json:"codigo_seguimiento"`
	DisplayStatus   string    `json:"estado_actual"`
	Location        string    `json:"ubicacion_actual"`
	UpdatedAt       time.Time `json:"fecha_actualizacion"`
	OriginService   string    `json:"servicio_origen"`
	WebhookURL      string    `json:"webhook_url,omitempty"`
}

// UpdateStatusRequest запрос оператора на смену статуса
type UpdateStatusRequest struct {
	Status   string `json:"estado" validate:"required"`
	Location string `json:"ubicacion" validate:"required"`
}

// UpdateAddressRequest запрос на смену адреса доставки
type UpdateAddressRequest struct {
	NewAddress string `json:"nueva_direccion" validate:"required"`
}

// AddressUpdated подтверждение смены адреса
type AddressUpdated struct {
	Message         string `json:"mensaje"`
	ExternalOrderID string `json:"id_orden_externa"`
	TrackingCode    string `json:"codigo_seguimiento"`
	NewAddress      string `json:"nueva_direccion"`
}

// ClosureEntry строка дневного отчёта
type ClosureEntry struct {
	ExternalOrderID string `json:"id_orden_externa"`
	TrackingCode    string `json:"codigo_seguimiento"`
	OriginService   string `json:"servicio_origen"`
	Customer        string `json:"cliente"`
	ProductCount    int    `json:"productos_count"`
	OnTime          string `json:"entregado_a_tiempo"`
	Status          string `json:"estado"`
}

// ClosureReport дневной отчёт по доставленным заказам
type ClosureReport struct {
	ReportDate string         `json:"fecha_reporte"`
	Total      int            `json:"total_entregas_para_cierre"`
	Deliveries []ClosureEntry `json:"entregas"`
}

func CustomerEntityToJSON(c entities.Customer) CustomerData {
	return CustomerData{
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}

func CustomerJSONToEntity(c CustomerData) entities.Customer {
	return entities.Customer{
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}

func ProductsEntityToJSON(items []entities.Item) []Product {
	products := make([]Product, 0, len(items))
	for _, it := range items {
		products = append(products, Product{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return products
}

func ProductsJSONToEntity(products []Product) []entities.Item {
	items := make([]entities.Item, 0, len(products))
	for _, p := range products {
		items = append(items, entities.Item{
			SKU:       p.SKU,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		})
	}
	return items
}

func CreateOrderJSONToInput(req CreateOrderRequest) service.CreateOrderInput {
	return service.CreateOrderInput{
		ExternalOrderID: req.ExternalOrderID,
		OriginalOrderID: req.OriginalOrderID,
		OriginService:   req.OriginService,
		WebhookURL:      req.WebhookURL,
		Customer:        CustomerJSONToEntity(req.Customer),
		Items:           ProductsJSONToEntity(req.Products),
	}
}

func ShipmentStatusFromEntity(o entities.Order) ShipmentStatus {
	return ShipmentStatus{
		ExternalOrderID: o.ExternalOrderID,
		TrackingCode:    o.TrackingCode,
		DisplayStatus:   o.DisplayStatus(),
		Location:        o.Location,
		UpdatedAt:       o.UpdatedAt,
	}
}

func FullOrderFromEntity(o entities.Order) FullOrder {
	return FullOrder{
		ExternalOrderID: o.ExternalOrderID,
		TrackingCode:    o.TrackingCode,
		DisplayStatus:   o.DisplayStatus(),
		Location:        o.Location,
		UpdatedAt:       o.UpdatedAt,
		OriginService:   o.OriginService,
		Customer:        CustomerEntityToJSON(o.Customer),
		Products:        ProductsEntityToJSON(o.Items),
	}
}

func OrderSummaryFromEntity(o entities.Order) OrderSummary {
	return OrderSummary{
		ExternalOrderID: o.ExternalOrderID,
		TrackingCode:    o.TrackingCode,
		DisplayStatus:   o.DisplayStatus(),
		Location:        o.Location,
		UpdatedAt:       o.UpdatedAt,
		OriginService:   o.OriginService,
		WebhookURL:      o.WebhookURL,
	}
}

func ClosureReportFromEntity(r entities.ClosureReport) ClosureReport {
	deliveries := make([]ClosureEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		deliveries = append(deliveries, ClosureEntry{
			ExternalOrderID: e.ExternalOrderID,
			TrackingCode:    e.TrackingCode,
			OriginService:   e.OriginService,
			Customer:        e.Customer,
			ProductCount:    e.ProductCount,
			OnTime:          e.OnTime,
			Status:          e.Status,
		})
	}

	return ClosureReport{
		ReportDate: r.Date.Format("2006-01-02"),
		Total:      r.Total,
		Deliveries: deliveries,
	}
}
