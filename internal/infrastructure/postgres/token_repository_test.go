package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

func TestTokenRepo_GetVigente(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewTokenRepository(mock)
	ctx := context.Background()
	exp := time.Now().Add(6 * time.Hour)

	mock.ExpectQuery(`SELECT id, entorno, token, sign, expiracion, created_at\s+FROM afip_tokens`).
		WithArgs(entity.EntornoTesting).
		WillReturnRows(pgxmock.NewRows([]string{"id", "entorno", "token", "sign", "expiracion", "created_at"}).
			AddRow("tok-1", entity.EntornoTesting, "TOKEN", "SIGN", exp, time.Now()))

	tok, err := r.GetVigente(ctx, entity.EntornoTesting)
	require.NoError(t, err)
	require.NotNil(t, tok)
	require.Equal(t, "TOKEN", tok.Token)
	require.Equal(t, "SIGN", tok.Sign)
	require.True(t, tok.Vigente(time.Now()))
}

func TestTokenRepo_GetVigente_SinFilas(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewTokenRepository(mock)

	mock.ExpectQuery(`FROM afip_tokens`).
		WithArgs(entity.EntornoProduccion).
		WillReturnError(pgx.ErrNoRows)

	tok, err := r.GetVigente(context.Background(), entity.EntornoProduccion)
	require.NoError(t, err, "sin token vigente no es un error, es un cache miss")
	require.Nil(t, tok)
}

func TestTokenRepo_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewTokenRepository(mock)
	tok := &entity.TokenAFIP{
		Entorno:    entity.EntornoTesting,
		Token:      "T",
		Sign:       "S",
		Expiracion: time.Now().Add(12 * time.Hour),
		CreatedAt:  time.Now(),
	}

	mock.ExpectExec(`INSERT INTO afip_tokens`).
		WithArgs(pgxmock.AnyArg(), tok.Entorno, tok.Token, tok.Sign, tok.Expiracion, tok.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), tok))
	require.NotEmpty(t, tok.ID, "Create debe asignar ID si falta")
}

func TestTokenRepo_Create_FalloDB(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewTokenRepository(mock)
	tok := &entity.TokenAFIP{ID: "tok-9", Entorno: entity.EntornoTesting}

	mock.ExpectExec(`INSERT INTO afip_tokens`).
		WithArgs(tok.ID, tok.Entorno, tok.Token, tok.Sign, tok.Expiracion, tok.CreatedAt).
		WillReturnError(errors.New("conexión perdida"))

	err := r.Create(context.Background(), tok)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert token")
}
