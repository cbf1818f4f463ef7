package entities

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"
)

type Customer struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type Item struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice float64
}

type Order struct {
	TrackingCode    string
	ExternalOrderID string
	OriginalOrderID string
	OriginService   string
	WebhookURL      string

	Customer Customer
	Items    []Item

	Status    Status
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Ставится один раз при переходе в ENTREGADO и больше не сбрасывается.
	DailyClosure bool
}

// DisplayStatus is always derived from the status registry, never stored
// independently on the entity.
func (o *Order) DisplayStatus() string {
	return o.Status.Display()
}

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrOrderDelivered = errors.New("order already delivered")
	ErrDuplicateOrder = errors.New("order already registered")
)

// DuplicateOrderError carries the tracking code of the already registered
// order so callers can surface it.
type DuplicateOrderError struct {
	ExternalOrderID string
	OriginService   string
	TrackingCode    string
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf(
		"order %q from service %q already registered with tracking code %q",
		e.ExternalOrderID, e.OriginService, e.TrackingCode,
	)
}

func (e *DuplicateOrderError) Is(target error) bool {
	return target == ErrDuplicateOrder
}

func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Order) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	if err := dec.Decode(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	return nil
}

func init() {
	gob.Register(Order{})
	gob.Register(Customer{})
	gob.Register(Item{})
}
