package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pedido cabecera de un pedido de la plataforma de pedidos.
// La gestión del ciclo de vida del pedido pertenece a la plataforma; aquí solo
// se lee para facturar.
type Pedido struct {
	ID        string
	Numero    int
	Total     decimal.Decimal
	Estado    string
	CreatedAt time.Time
}
