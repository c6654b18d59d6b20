package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// TokenRepository puerto del cache de tokens WSAA.
type TokenRepository interface {
	// GetVigente devuelve el token más reciente del entorno con expiración
	// estrictamente futura, o nil si no hay ninguno utilizable.
	GetVigente(ctx context.Context, entorno string) (*entity.TokenAFIP, error)
	// Create persiste un token recién emitido. Las filas viejas no se borran.
	Create(ctx context.Context, token *entity.TokenAFIP) error
}
