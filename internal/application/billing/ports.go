package billing

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	infraafip "github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
)

// WSAAPort puerto de salida hacia el servicio de autenticación de AFIP.
// La implementación concreta usa SOAP; para tests se inyecta un mock.
type WSAAPort interface {
	LoginCms(ctx context.Context, cmsB64, entorno string) (*infraafip.LoginResult, error)
}

// WSFEPort puerto de salida hacia el servicio de facturación WSFEv1.
type WSFEPort interface {
	UltimoAutorizado(ctx context.Context, auth infraafip.Auth, ptoVta, tipoCbte int, entorno string) (int64, error)
	SolicitarCAE(ctx context.Context, auth infraafip.Auth, data infraafip.InvoiceData, entorno string) (*infraafip.InvoiceResult, error)
}

// TRASigner construye y firma el Ticket de Requerimiento de Acceso.
type TRASigner interface {
	// SignTRA firma el XML con CMS y devuelve el DER en Base64.
	SignTRA(tra []byte, clavePrivadaPEM, certificadoPEM string) (string, error)
}

// VoucherLocker serializa la generación de comprobantes por par
// (punto de venta, tipo de comprobante): dos Generar concurrentes sobre el
// mismo par no deben leer el mismo último número.
type VoucherLocker interface {
	WithLock(ctx context.Context, ptoVta, tipoCbte int, fn func(ctx context.Context) error) error
}

// ComprobantePDFGenerator genera la representación gráfica de un comprobante autorizado.
type ComprobantePDFGenerator interface {
	GenerateComprobantePDF(ctx context.Context, comp *entity.Comprobante, pedido *entity.Pedido, cred *entity.Credencial) ([]byte, error)
}

// CMSSignerFunc adapta la función de firma del paquete afip al puerto TRASigner.
type CMSSignerFunc func(tra []byte, clavePrivadaPEM, certificadoPEM string) (string, error)

func (f CMSSignerFunc) SignTRA(tra []byte, clavePrivadaPEM, certificadoPEM string) (string, error) {
	return f(tra, clavePrivadaPEM, certificadoPEM)
}
