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

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo cache de tokens WSAA sobre PostgreSQL. Append-only: cada login
// inserta una fila nueva y GetVigente se queda con la más reciente no vencida.
type TokenRepo struct {
	q Querier
}

// NewTokenRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// GetVigente devuelve el token más reciente del entorno con expiración futura,
// o nil si no hay ninguno utilizable. El corte lo decide el reloj de la DB
// (now()) para no depender del reloj de cada instancia.
func (r *TokenRepo) GetVigente(ctx context.Context, entorno string) (*entity.TokenAFIP, error) {
	const query = `
		SELECT id, entorno, token, sign, expiracion, created_at
		FROM afip_tokens
		WHERE entorno = $1 AND expiracion > now()
		ORDER BY expiracion DESC
		LIMIT 1`
	var t entity.TokenAFIP
	err := r.q.QueryRow(ctx, query, entorno).Scan(
		&t.ID, &t.Entorno, &t.Token, &t.Sign, &t.Expiracion, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token vigente: %w", err)
	}
	return &t, nil
}

// Create persiste un token recién emitido por el WSAA.
func (r *TokenRepo) Create(ctx context.Context, token *entity.TokenAFIP) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO afip_tokens (id, entorno, token, sign, expiracion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		token.ID, token.Entorno, token.Token, token.Sign, token.Expiracion, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}
