package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func testComprobante() *entity.Comprobante {
	return &entity.Comprobante{
		ID:             "comp-1",
		PedidoID:       "ped-1",
		CAE:            "75123456789012",
		CAEVencimiento: "20250325",
		TipoCbte:       11,
		Numero:         1743,
		PuntoVenta:     3,
		Total:          decimal.RequireFromString("1520.50"),
		Estado:         entity.ComprobanteAutorizado,
		RespuestaAFIP:  "<xml/>",
		CreatedAt:      time.Now(),
	}
}

func TestComprobanteRepo_Create_OK_y_Duplicado(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewComprobanteRepository(mock)
	comp := testComprobante()

	mock.ExpectExec(`INSERT INTO comprobantes`).
		WithArgs(comp.ID, comp.PedidoID, comp.CAE, comp.CAEVencimiento, comp.TipoCbte, comp.Numero,
			comp.PuntoVenta, comp.Total, comp.Estado, comp.RespuestaAFIP, comp.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(context.Background(), comp))

	mock.ExpectExec(`INSERT INTO comprobantes`).
		WithArgs(comp.ID, comp.PedidoID, comp.CAE, comp.CAEVencimiento, comp.TipoCbte, comp.Numero,
			comp.PuntoVenta, comp.Total, comp.Estado, comp.RespuestaAFIP, comp.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(context.Background(), comp)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ya registrado")
}

func TestComprobanteRepo_GetByPedidoID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewComprobanteRepository(mock)
	comp := testComprobante()

	cols := []string{"id", "pedido_id", "cae", "cae_vencimiento", "tipo_cbte", "numero",
		"punto_venta", "total", "estado", "respuesta_afip", "created_at"}
	mock.ExpectQuery(`FROM comprobantes WHERE pedido_id = \$1`).
		WithArgs("ped-1").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			comp.ID, comp.PedidoID, comp.CAE, comp.CAEVencimiento, comp.TipoCbte, comp.Numero,
			comp.PuntoVenta, comp.Total, comp.Estado, comp.RespuestaAFIP, comp.CreatedAt))

	got, err := r.GetByPedidoID(context.Background(), "ped-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, comp.CAE, got.CAE)
	require.Equal(t, int64(1743), got.Numero)
	require.True(t, got.Total.Equal(comp.Total))
}

func TestComprobanteRepo_GetByID_Inexistente(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewComprobanteRepository(mock)

	mock.ExpectQuery(`FROM comprobantes WHERE id = \$1`).
		WithArgs("no-existe").
		WillReturnError(pgx.ErrNoRows)

	got, err := r.GetByID(context.Background(), "no-existe")
	require.NoError(t, err)
	require.Nil(t, got)
}
