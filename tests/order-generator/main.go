package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Customer struct {
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	Email   string `json:"email,omitempty"`
}

type Product struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"nombre"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
}

type Order struct {
	ExternalOrderID string    `json:"id_orden_externa"`
	OriginalOrderID string    `json:"id_orden_original"`
	OriginService   string    `json:"servicio_origen"`
	WebhookURL      string    `json:"webhook_url,omitempty"`
	Customer        Customer  `json:"datos_cliente"`
	Products        []Product `json:"productos"`
}

var services = []string{"Tienda Andes", "Moda Centro", "ElectroMall", "Libros del Sur"}

var products = []Product{
	{SKU: "ZAP-001", Name: "Zapatillas urbanas", UnitPrice: 39990},
	{SKU: "POL-014", Name: "Polera estampada", UnitPrice: 12990},
	{SKU: "AUD-203", Name: "Audífonos inalámbricos", UnitPrice: 54990},
	{SKU: "LIB-777", Name: "Novela de misterio", UnitPrice: 9990},
	{SKU: "TAZ-050", Name: "Taza térmica", UnitPrice: 7490},
}

func randomProducts() []Product {
	n := rand.Intn(3) + 1
	out := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		p := products[rand.Intn(len(products))]
		p.Quantity = rand.Intn(4) + 1
		out = append(out, p)
	}
	return out
}

func generateRandomOrder() Order {
	return Order{
		ExternalOrderID: uuid.NewString(),
		OriginalOrderID: fmt.Sprintf("PED-%05d", rand.Intn(99999)),
		OriginService:   services[rand.Intn(len(services))],
		Customer: Customer{
			Name:    fmt.Sprintf("Cliente %d", rand.Intn(1000)),
			Address: fmt.Sprintf("Av. Siempre Viva %d", rand.Intn(2000)),
			Phone:   fmt.Sprintf("+569%08d", rand.Intn(99999999)),
			Email:   fmt.Sprintf("cliente%d@example.com", rand.Intn(1000)),
		},
		Products: randomProducts(),
	}
}

func main() {
	addr := kafka.TCP("localhost:9092")

	writer := &kafka.Writer{
		Addr:  addr,
		Topic: "ordenes",
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	for {
		select {
		case <-ticker.C:
			order := generateRandomOrder()
			data, _ := json.Marshal(order)
			writer.WriteMessages(context.Background(), kafka.Message{Value: data})
			log.Println("order generated", order.ExternalOrderID)
		case <-ctx.Done():
			return
		}
	}
}
