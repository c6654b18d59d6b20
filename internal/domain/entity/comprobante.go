package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un comprobante fiscal.
const (
	ComprobanteAutorizado = "autorizado"
)

// Comprobante factura electrónica autorizada por AFIP, vinculada a un pedido.
// Se crea exactamente una vez por generación exitosa (CAE presente) y no se
// actualiza dentro de este subsistema.
type Comprobante struct {
	ID             string
	PedidoID       string
	CAE            string
	CAEVencimiento string // YYYYMMDD tal como lo devuelve AFIP
	TipoCbte       int
	Numero         int64
	PuntoVenta     int
	Total          decimal.Decimal
	Estado         string
	RespuestaAFIP  string // cuerpo SOAP crudo, retenido para auditoría
	CreatedAt      time.Time
}
