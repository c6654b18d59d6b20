package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	infraafip "github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
	pkgafip "github.com/jhoicas/Facturacion-api/pkg/afip"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks
// ──────────────────────────────────────────────────────────────────────────────

type authMock struct {
	token *entity.TokenAFIP
	cred  *entity.Credencial
	err   error
	calls int
}

func (m *authMock) GetAuth(_ context.Context, _ string) (*entity.TokenAFIP, *entity.Credencial, error) {
	m.calls++
	return m.token, m.cred, m.err
}

type wsfeMock struct {
	ultimo        int64
	ultimoErr     error
	ultimoCalls   int
	caeResult     *infraafip.InvoiceResult
	caeErr        error
	gotData       infraafip.InvoiceData
	gotTipoCbte   int
	solicitarHits int
}

func (m *wsfeMock) UltimoAutorizado(_ context.Context, _ infraafip.Auth, _, tipoCbte int, _ string) (int64, error) {
	m.ultimoCalls++
	m.gotTipoCbte = tipoCbte
	return m.ultimo, m.ultimoErr
}

func (m *wsfeMock) SolicitarCAE(_ context.Context, _ infraafip.Auth, data infraafip.InvoiceData, _ string) (*infraafip.InvoiceResult, error) {
	m.solicitarHits++
	m.gotData = data
	return m.caeResult, m.caeErr
}

type pedidoRepoMock struct {
	pedido *entity.Pedido
}

func (m *pedidoRepoMock) GetByID(_ context.Context, _ string) (*entity.Pedido, error) {
	return m.pedido, nil
}

type compRepoMock struct {
	created []*entity.Comprobante
}

func (m *compRepoMock) Create(_ context.Context, c *entity.Comprobante) error {
	m.created = append(m.created, c)
	return nil
}
func (m *compRepoMock) GetByID(_ context.Context, _ string) (*entity.Comprobante, error) {
	return nil, nil
}
func (m *compRepoMock) GetByPedidoID(_ context.Context, _ string) (*entity.Comprobante, error) {
	return nil, nil
}

// lockerMock ejecuta el callback directo y cuenta invocaciones.
type lockerMock struct {
	calls int
}

func (m *lockerMock) WithLock(ctx context.Context, _, _ int, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func okAuth(condicion string) *authMock {
	cred := testCredencial()
	cred.CondicionIVA = condicion
	return &authMock{
		token: &entity.TokenAFIP{Token: "TOK", Sign: "SIGN", Expiracion: time.Now().Add(time.Hour)},
		cred:  cred,
	}
}

func aprobado(cae string) *infraafip.InvoiceResult {
	return &infraafip.InvoiceResult{
		CAE:         cae,
		CAEFchVto:   "20250325",
		Resultado:   "A",
		RawResponse: "<xml/>",
	}
}

func testPedido() *entity.Pedido {
	return &entity.Pedido{ID: "ped-1", Numero: 42, Total: decimal.RequireFromString("1520.50")}
}

func newUC(auth *authMock, wsfe *wsfeMock, pedidos *pedidoRepoMock, comps *compRepoMock, locker *lockerMock) *billing.FacturarUseCase {
	return billing.NewFacturarUseCase(auth, pedidos, comps, wsfe, locker, quietLogger())
}

// ──────────────────────────────────────────────────────────────────────────────
// Status
// ──────────────────────────────────────────────────────────────────────────────

func TestStatus_Online(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 1742}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{}, &compRepoMock{}, &lockerMock{})

	res, err := uc.Status(context.Background(), entity.EntornoTesting)
	require.NoError(t, err)
	assert.Equal(t, "online", res.Status)
	assert.Equal(t, int64(1742), res.LastVoucher)
}

func TestStatus_DerivacionTipoComprobante(t *testing.T) {
	// monotributo → Factura C (11); cualquier otra condición → Factura B (6)
	cases := []struct {
		condicion string
		tipo      int
	}{
		{"monotributo", pkgafip.CbteFacturaC},
		{"responsable_inscripto", pkgafip.CbteFacturaB},
		{"regimen general", pkgafip.CbteFacturaB},
	}
	for _, tc := range cases {
		wsfe := &wsfeMock{}
		uc := newUC(okAuth(tc.condicion), wsfe, &pedidoRepoMock{}, &compRepoMock{}, &lockerMock{})
		_, err := uc.Status(context.Background(), entity.EntornoTesting)
		require.NoError(t, err)
		assert.Equal(t, tc.tipo, wsfe.gotTipoCbte, "condición %q", tc.condicion)
	}
}

func TestStatus_DobleConsultaNoMultiplicaLogins(t *testing.T) {
	auth := okAuth("monotributo")
	wsfe := &wsfeMock{ultimo: 7}
	uc := newUC(auth, wsfe, &pedidoRepoMock{}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Status(context.Background(), entity.EntornoTesting)
	require.NoError(t, err)
	_, err = uc.Status(context.Background(), entity.EntornoTesting)
	require.NoError(t, err)

	// El auth se consulta por llamada pero el mock representa el camino de
	// cache: nunca más de una resolución por Status.
	assert.Equal(t, 2, auth.calls)
	assert.Equal(t, 2, wsfe.ultimoCalls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Generar
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerar_ExitoPersisteComprobante(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 1742, caeResult: aprobado("75123456789012")}
	comps := &compRepoMock{}
	locker := &lockerMock{}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, comps, locker)

	res, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "75123456789012", res.CAE)
	assert.Equal(t, int64(1743), res.Numero)

	require.Len(t, comps.created, 1)
	comp := comps.created[0]
	assert.Equal(t, "ped-1", comp.PedidoID)
	assert.Equal(t, "75123456789012", comp.CAE)
	assert.Equal(t, "20250325", comp.CAEVencimiento)
	assert.Equal(t, int64(1743), comp.Numero)
	assert.Equal(t, entity.ComprobanteAutorizado, comp.Estado)
	assert.Equal(t, "<xml/>", comp.RespuestaAFIP)
	assert.Equal(t, 1, locker.calls, "la generación debe correr bajo el lock")
}

func TestGenerar_IncrementoDeNumero(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 99, caeResult: aprobado("X")}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.NoError(t, err)

	// Siempre CbteDesde == CbteHasta == último + 1
	assert.Equal(t, int64(100), wsfe.gotData.CbteDesde)
	assert.Equal(t, int64(100), wsfe.gotData.CbteHasta)
}

func TestGenerar_DatosSimplificados(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 0, caeResult: aprobado("X")}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.NoError(t, err)

	d := wsfe.gotData
	assert.Equal(t, pkgafip.DocTipoConsumidorFinal, d.DocTipo)
	assert.Equal(t, int64(0), d.DocNro)
	assert.Equal(t, pkgafip.ConceptoProductos, d.Concepto)
	assert.Equal(t, time.Now().UTC().Format("20060102"), d.FechaCbte)
	assert.True(t, d.Total.Equal(decimal.RequireFromString("1520.50")))
}

func TestGenerar_RechazoAFIPNoEsError(t *testing.T) {
	wsfe := &wsfeMock{
		ultimo: 10,
		caeResult: &infraafip.InvoiceResult{
			Resultado:   "R",
			ErrorMsg:    "[10015] Campo DocNro invalido",
			RawResponse: "<respuesta-cruda/>",
		},
	}
	comps := &compRepoMock{}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, comps, &lockerMock{})

	res, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.NoError(t, err, "un rechazo fluye como valor, no como error")
	assert.False(t, res.Success)
	assert.Equal(t, "[10015] Campo DocNro invalido", res.Error)
	assert.Equal(t, "<respuesta-cruda/>", res.RawResponse)
	assert.Empty(t, comps.created, "un rechazo no debe persistir comprobante")
}

func TestGenerar_RechazoSinMensajeUsaFallback(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 10, caeResult: &infraafip.InvoiceResult{Resultado: "R", RawResponse: "<r/>"}}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, &compRepoMock{}, &lockerMock{})

	res, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "error AFIP desconocido", res.Error)
}

func TestGenerar_SinCredencialesEsFatal(t *testing.T) {
	auth := &authMock{err: domain.ErrCredencialesFaltantes}
	uc := newUC(auth, &wsfeMock{}, &pedidoRepoMock{pedido: testPedido()}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoProduccion, "ped-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredencialesFaltantes)
	assert.Contains(t, err.Error(), "credenciales")
}

func TestGenerar_PedidoInexistente(t *testing.T) {
	uc := newUC(okAuth("monotributo"), &wsfeMock{}, &pedidoRepoMock{pedido: nil}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoTesting, "no-existe")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPedidoNotFound)
}

func TestGenerar_SinOrderID(t *testing.T) {
	uc := newUC(okAuth("monotributo"), &wsfeMock{}, &pedidoRepoMock{}, &compRepoMock{}, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoTesting, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerar_FalloDeTransporteSePropaga(t *testing.T) {
	wsfe := &wsfeMock{ultimo: 10, caeErr: errors.New("wsfe: llamada HTTP fallida")}
	comps := &compRepoMock{}
	uc := newUC(okAuth("monotributo"), wsfe, &pedidoRepoMock{pedido: testPedido()}, comps, &lockerMock{})

	_, err := uc.Generar(context.Background(), entity.EntornoTesting, "ped-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llamada HTTP fallida")
	assert.Empty(t, comps.created)
}
