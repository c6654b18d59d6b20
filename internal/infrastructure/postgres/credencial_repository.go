package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.CredencialRepository = (*CredencialRepo)(nil)

// CredencialRepo implementación de CredencialRepository (usable con pool o tx).
type CredencialRepo struct {
	q Querier
}

// NewCredencialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCredencialRepository(q Querier) *CredencialRepo {
	return &CredencialRepo{q: q}
}

// GetActiva devuelve la credencial activa del entorno (nil si no hay).
// Si hay más de una activa gana la más reciente.
func (r *CredencialRepo) GetActiva(ctx context.Context, entorno string) (*entity.Credencial, error) {
	const query = `
		SELECT id, entorno, cuit, punto_venta, condicion_iva,
		       clave_privada_pem, certificado_pem, activa, created_at
		FROM afip_credenciales
		WHERE entorno = $1 AND activa = true
		ORDER BY created_at DESC
		LIMIT 1`
	var c entity.Credencial
	err := r.q.QueryRow(ctx, query, entorno).Scan(
		&c.ID, &c.Entorno, &c.CUIT, &c.PuntoVenta, &c.CondicionIVA,
		&c.ClavePrivadaPEM, &c.CertificadoPEM, &c.Activa, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credencial activa: %w", err)
	}
	return &c, nil
}
