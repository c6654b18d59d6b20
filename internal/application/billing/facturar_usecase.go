package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	infraafip "github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
	pkgafip "github.com/jhoicas/Facturacion-api/pkg/afip"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// mensaje cuando AFIP rechaza sin un bloque de error parseable.
const errAFIPDesconocido = "error AFIP desconocido"

// AuthProvider abstrae AuthUseCase para poder mockearlo en tests.
type AuthProvider interface {
	GetAuth(ctx context.Context, entorno string) (*entity.TokenAFIP, *entity.Credencial, error)
}

// FacturarUseCase orquesta el ciclo completo de facturación electrónica:
//
//	Auth WSAA → último comprobante → FECAESolicitar → persistir comprobante
//
// Cada invocación es una cadena estrictamente secuencial de llamadas; no hay
// paralelismo interno porque cada paso depende del anterior. La asignación del
// número de comprobante se serializa por (punto de venta, tipo) con un lock
// advisory para que dos Generar concurrentes no pidan el mismo número.
//
// No hay reintentos automáticos: la numeración es secuencial y un reintento a
// ciegas tras un timeout puede duplicar un número que AFIP ya autorizó. El
// caller debe consultar Status antes de reintentar.
type FacturarUseCase struct {
	auth       AuthProvider
	pedidoRepo repository.PedidoRepository
	compRepo   repository.ComprobanteRepository
	wsfe       WSFEPort
	locker     VoucherLocker
	log        *logger.Logger
}

// NewFacturarUseCase construye el orquestador.
func NewFacturarUseCase(
	auth AuthProvider,
	pedidoRepo repository.PedidoRepository,
	compRepo repository.ComprobanteRepository,
	wsfe WSFEPort,
	locker VoucherLocker,
	log *logger.Logger,
) *FacturarUseCase {
	return &FacturarUseCase{
		auth:       auth,
		pedidoRepo: pedidoRepo,
		compRepo:   compRepo,
		wsfe:       wsfe,
		locker:     locker,
		log:        log,
	}
}

// Status verifica la conectividad con AFIP y devuelve el último número de
// comprobante autorizado. Sin efectos: no emite nada ni escribe comprobantes.
func (uc *FacturarUseCase) Status(ctx context.Context, entorno string) (*dto.EstadoResponse, error) {
	token, cred, err := uc.auth.GetAuth(ctx, entorno)
	if err != nil {
		return nil, err
	}

	tipoCbte := pkgafip.CbteTypeForCondicion(cred.CondicionIVA)
	last, err := uc.wsfe.UltimoAutorizado(ctx, wsfeAuth(token, cred), cred.PuntoVenta, tipoCbte, entorno)
	if err != nil {
		return nil, fmt.Errorf("status: consultar último autorizado: %w", err)
	}

	return &dto.EstadoResponse{Status: "online", LastVoucher: last}, nil
}

// Generar autoriza un comprobante para el pedido y lo persiste si AFIP emite
// CAE. Un rechazo de AFIP se devuelve como respuesta normal (Success=false)
// para que el operador vea la causa; solo los fallos de configuración, firma,
// pedido inexistente o transporte son errores.
func (uc *FacturarUseCase) Generar(ctx context.Context, entorno, pedidoID string) (*dto.GenerarResponse, error) {
	if pedidoID == "" {
		return nil, fmt.Errorf("%w: orderId requerido", domain.ErrInvalidInput)
	}

	token, cred, err := uc.auth.GetAuth(ctx, entorno)
	if err != nil {
		return nil, err
	}

	pedido, err := uc.pedidoRepo.GetByID(ctx, pedidoID)
	if err != nil {
		return nil, fmt.Errorf("generar: consultar pedido: %w", err)
	}
	if pedido == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPedidoNotFound, pedidoID)
	}

	tipoCbte := pkgafip.CbteTypeForCondicion(cred.CondicionIVA)

	var out *dto.GenerarResponse
	err = uc.locker.WithLock(ctx, cred.PuntoVenta, tipoCbte, func(ctx context.Context) error {
		out, err = uc.generarLocked(ctx, entorno, token, cred, pedido, tipoCbte)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// generarLocked corre con el par (ptoVta, tipoCbte) serializado.
func (uc *FacturarUseCase) generarLocked(
	ctx context.Context,
	entorno string,
	token *entity.TokenAFIP,
	cred *entity.Credencial,
	pedido *entity.Pedido,
	tipoCbte int,
) (*dto.GenerarResponse, error) {
	auth := wsfeAuth(token, cred)

	last, err := uc.wsfe.UltimoAutorizado(ctx, auth, cred.PuntoVenta, tipoCbte, entorno)
	if err != nil {
		return nil, fmt.Errorf("generar: consultar último autorizado: %w", err)
	}
	next := last + 1

	data := infraafip.InvoiceData{
		PuntoVenta: cred.PuntoVenta,
		TipoCbte:   tipoCbte,
		Concepto:   pkgafip.ConceptoProductos,
		// Facturación simplificada: siempre consumidor final sin identificar.
		DocTipo:   pkgafip.DocTipoConsumidorFinal,
		DocNro:    0,
		CbteDesde: next,
		CbteHasta: next,
		FechaCbte: time.Now().UTC().Format("20060102"),
		Total:     pedido.Total,
	}

	res, err := uc.wsfe.SolicitarCAE(ctx, auth, data, entorno)
	if err != nil {
		return nil, fmt.Errorf("generar: solicitar CAE: %w", err)
	}

	if !res.Aprobado() {
		msg := res.ErrorMsg
		if msg == "" {
			msg = errAFIPDesconocido
		}
		uc.log.Warn().Str("pedido_id", pedido.ID).Int64("numero", next).Str("causa", msg).
			Msg("AFIP rechazó el comprobante")
		return &dto.GenerarResponse{
			Success:     false,
			Error:       msg,
			RawResponse: res.RawResponse,
		}, nil
	}

	comp := &entity.Comprobante{
		ID:             uuid.New().String(),
		PedidoID:       pedido.ID,
		CAE:            res.CAE,
		CAEVencimiento: res.CAEFchVto,
		TipoCbte:       tipoCbte,
		Numero:         next,
		PuntoVenta:     cred.PuntoVenta,
		Total:          pedido.Total,
		Estado:         entity.ComprobanteAutorizado,
		RespuestaAFIP:  res.RawResponse,
		CreatedAt:      time.Now(),
	}
	if err := uc.compRepo.Create(ctx, comp); err != nil {
		return nil, fmt.Errorf("generar: persistir comprobante: %w", err)
	}

	uc.log.Info().Str("pedido_id", pedido.ID).Str("cae", res.CAE).Int64("numero", next).
		Int("tipo_cbte", tipoCbte).Msg("comprobante autorizado")

	return &dto.GenerarResponse{Success: true, CAE: res.CAE, Numero: next}, nil
}

func wsfeAuth(token *entity.TokenAFIP, cred *entity.Credencial) infraafip.Auth {
	return infraafip.Auth{Token: token.Token, Sign: token.Sign, CUIT: cred.CUIT}
}
