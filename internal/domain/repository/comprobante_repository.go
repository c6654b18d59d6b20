package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ComprobanteRepository puerto de persistencia de comprobantes autorizados.
type ComprobanteRepository interface {
	Create(ctx context.Context, comp *entity.Comprobante) error
	// GetByID devuelve el comprobante, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Comprobante, error)
	// GetByPedidoID devuelve el comprobante asociado al pedido, o nil si no se facturó.
	GetByPedidoID(ctx context.Context, pedidoID string) (*entity.Comprobante, error)
}
