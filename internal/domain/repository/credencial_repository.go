package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// CredencialRepository puerto de lectura de credenciales AFIP.
// El aprovisionamiento es externo (cmd/seed_afip); aquí no hay escritura.
type CredencialRepository interface {
	// GetActiva devuelve la credencial activa del entorno, o nil si no hay ninguna.
	GetActiva(ctx context.Context, entorno string) (*entity.Credencial, error)
}
