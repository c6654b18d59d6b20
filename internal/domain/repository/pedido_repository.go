package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// PedidoRepository puerto de lectura de pedidos de la plataforma.
type PedidoRepository interface {
	// GetByID devuelve el pedido, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Pedido, error)
}
