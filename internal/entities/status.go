package entities

import (
	"fmt"
	"strings"
)

// Status is the internal order status key. The set of keys is closed:
// every order carries exactly one of the constants below. Transitions are
// not restricted, the only special key is StatusDelivered which latches
// the daily closure flag.
type Status string

const (
	StatusReceived    Status = "RECIBIDA"
	StatusShipDateSet Status = "FECHA_SET"
	StatusInTransit   Status = "EN_CAMINO"
	StatusDelivered   Status = "ENTREGADO"
)

var statusText = map[Status]string{
	StatusReceived:    "Solicitud Recibida",
	StatusShipDateSet: "Fecha de Envío Establecida",
	StatusInTransit:   "El producto fue enviado y está en camino",
	StatusDelivered:   "El producto fue entregado al cliente",
}

// ParseStatus normalizes a free-text status label (uppercase, spaces to
// underscores) and rejects anything outside the registry.
func ParseStatus(raw string) (Status, error) {
	key := Status(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "_"))
	if !key.Valid() {
		return "", fmt.Errorf("%w: %q, allowed: %s", ErrInvalidStatus, raw, strings.Join(StatusKeys(), ", "))
	}
	return key, nil
}

func (s Status) Valid() bool {
	_, ok := statusText[s]
	return ok
}

// Display returns the human-readable text for the status key.
func (s Status) Display() string {
	return statusText[s]
}

// StatusKeys lists the registry keys in lifecycle order, used for error
// messages.
func StatusKeys() []string {
	return []string{
		string(StatusReceived),
		string(StatusShipDateSet),
		string(StatusInTransit),
		string(StatusDelivered),
	}
}
