package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo persistencia de comprobantes autorizados (usable con pool o tx).
type ComprobanteRepo struct {
	q Querier
}

// NewComprobanteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComprobanteRepository(q Querier) *ComprobanteRepo {
	return &ComprobanteRepo{q: q}
}

// Create persiste un comprobante autorizado. El constraint único sobre
// (punto_venta, tipo_cbte, numero) es la última defensa contra números
// duplicados si dos instancias generan sin pasar por el lock.
func (r *ComprobanteRepo) Create(ctx context.Context, comp *entity.Comprobante) error {
	if comp.ID == "" {
		comp.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO comprobantes (id, pedido_id, cae, cae_vencimiento, tipo_cbte, numero,
		                          punto_venta, total, estado, respuesta_afip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		comp.ID, comp.PedidoID, comp.CAE, comp.CAEVencimiento, comp.TipoCbte, comp.Numero,
		comp.PuntoVenta, comp.Total, comp.Estado, comp.RespuestaAFIP, comp.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de comprobante ya registrado: %w", err)
		}
		return fmt.Errorf("insert comprobante: %w", err)
	}
	return nil
}

// GetByID obtiene un comprobante por ID (nil si no existe).
func (r *ComprobanteRepo) GetByID(ctx context.Context, id string) (*entity.Comprobante, error) {
	const query = `
		SELECT id, pedido_id, cae, cae_vencimiento, tipo_cbte, numero,
		       punto_venta, total, estado, respuesta_afip, created_at
		FROM comprobantes WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByPedidoID obtiene el comprobante asociado a un pedido (nil si no se facturó).
func (r *ComprobanteRepo) GetByPedidoID(ctx context.Context, pedidoID string) (*entity.Comprobante, error) {
	const query = `
		SELECT id, pedido_id, cae, cae_vencimiento, tipo_cbte, numero,
		       punto_venta, total, estado, respuesta_afip, created_at
		FROM comprobantes WHERE pedido_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, pedidoID))
}

func (r *ComprobanteRepo) scanOne(row pgx.Row) (*entity.Comprobante, error) {
	var c entity.Comprobante
	err := row.Scan(
		&c.ID, &c.PedidoID, &c.CAE, &c.CAEVencimiento, &c.TipoCbte, &c.Numero,
		&c.PuntoVenta, &c.Total, &c.Estado, &c.RespuestaAFIP, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comprobante: %w", err)
	}
	return &c, nil
}
