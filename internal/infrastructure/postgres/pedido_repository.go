package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.PedidoRepository = (*PedidoRepo)(nil)

// PedidoRepo lectura de pedidos de la plataforma (usable con pool o tx).
type PedidoRepo struct {
	q Querier
}

// NewPedidoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPedidoRepository(q Querier) *PedidoRepo {
	return &PedidoRepo{q: q}
}

// GetByID obtiene un pedido por ID (nil si no existe).
func (r *PedidoRepo) GetByID(ctx context.Context, id string) (*entity.Pedido, error) {
	const query = `
		SELECT id, numero, total, estado, created_at
		FROM pedidos WHERE id = $1`
	var p entity.Pedido
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Numero, &p.Total, &p.Estado, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	return &p, nil
}
