package entities_test

import (
	"testing"

	"github.com/ElRublo/gestion-envios/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    entities.Status
		wantErr bool
	}{
		{name: "exact key", raw: "ENTREGADO", want: entities.StatusDelivered},
		{name: "lowercase", raw: "recibida", want: entities.StatusReceived},
		{name: "spaces to underscores", raw: "fecha set", want: entities.StatusShipDateSet},
		{name: "mixed case with spaces", raw: "En Camino", want: entities.StatusInTransit},
		{name: "surrounding whitespace", raw: "  entregado ", want: entities.StatusDelivered},
		{name: "unknown key", raw: "PERDIDO", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := entities.ParseStatus(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, entities.ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseStatus_ErrorListsKeys(t *testing.T) {
	_, err := entities.ParseStatus("LOST")
	require.Error(t, err)
	for _, key := range entities.StatusKeys() {
		assert.Contains(t, err.Error(), key)
	}
}

func TestStatus_Display(t *testing.T) {
	assert.Equal(t, "Solicitud Recibida", entities.StatusReceived.Display())
	assert.Equal(t, "El producto fue entregado al cliente", entities.StatusDelivered.Display())
	assert.Empty(t, entities.Status("PERDIDO").Display())
}

func TestOrder_MarshalRoundTrip(t *testing.T) {
	order := entities.Order{
		TrackingCode:    "A1B2C3D4",
		ExternalOrderID: "ext-1",
		OriginService:   "Tienda Uno",
		Customer:        entities.Customer{Name: "Ana", Address: "Calle 1", Phone: "+56911111111"},
		Items:           []entities.Item{{SKU: "SKU-1", Name: "Zapatos", Quantity: 2, UnitPrice: 19990}},
		Status:          entities.StatusReceived,
	}

	data, err := order.Marshal()
	require.NoError(t, err)

	var got entities.Order
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, order, got)
}

func TestOrder_UnmarshalBroken(t *testing.T) {
	var got entities.Order
	assert.ErrorIs(t, got.Unmarshal([]byte("broken")), entities.ErrInvalidOrder)
}

func TestDuplicateOrderError(t *testing.T) {
	err := &entities.DuplicateOrderError{
		ExternalOrderID: "ext-1",
		OriginService:   "Tienda Uno",
		TrackingCode:    "A1B2C3D4",
	}
	assert.ErrorIs(t, err, entities.ErrDuplicateOrder)
	assert.Contains(t, err.Error(), "A1B2C3D4")
}
