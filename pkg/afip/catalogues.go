// Package afip contiene catálogos y validaciones alineados a los manuales del
// desarrollador de AFIP para WSFEv1 (RG 4291) y al padrón de tipos de
// comprobante vigente.
package afip

// =============================================================================
// Tipos de Comprobante (WSFEv1 - FEParamGetTiposCbte)
// Solo se listan los tipos que el sistema puede emitir o consultar.
// =============================================================================

const (
	CbteFacturaA = 1  // Factura A (responsable inscripto a responsable inscripto)
	CbteFacturaB = 6  // Factura B (responsable inscripto a consumidor final)
	CbteFacturaC = 11 // Factura C (monotributista)
)

// ValidCbteTypes tipos de comprobante que este sistema sabe emitir.
var ValidCbteTypes = map[int]bool{
	CbteFacturaA: true,
	CbteFacturaB: true,
	CbteFacturaC: true,
}

// CbteTypeName devuelve el nombre legible del tipo de comprobante.
func CbteTypeName(code int) string {
	switch code {
	case CbteFacturaA:
		return "Factura A"
	case CbteFacturaB:
		return "Factura B"
	case CbteFacturaC:
		return "Factura C"
	default:
		return "Comprobante desconocido"
	}
}

// =============================================================================
// Tipos de Documento del comprador (WSFEv1 - FEParamGetTiposDoc)
// =============================================================================

const (
	DocTipoCUIT            = 80 // CUIT
	DocTipoCUIL            = 86 // CUIL
	DocTipoDNI             = 96 // DNI
	DocTipoConsumidorFinal = 99 // Consumidor final sin identificar
)

// =============================================================================
// Conceptos (WSFEv1 - FEParamGetTiposConcepto)
// =============================================================================

const (
	ConceptoProductos          = 1
	ConceptoServicios          = 2
	ConceptoProductosServicios = 3
)

// =============================================================================
// Condición frente al IVA del emisor (afip_credenciales.condicion_iva)
// =============================================================================

const (
	CondicionMonotributo = "monotributo"
	CondicionInscripto   = "responsable_inscripto"
)

// CbteTypeForCondicion deriva el tipo de comprobante a emitir según la
// condición fiscal del emisor: monotributo emite Factura C, el resto Factura B
// (el sistema solo factura a consumidor final).
func CbteTypeForCondicion(condicionIVA string) int {
	if condicionIVA == CondicionMonotributo {
		return CbteFacturaC
	}
	return CbteFacturaB
}

// =============================================================================
// Moneda (WSFEv1 - FEParamGetTiposMonedas)
// =============================================================================

const (
	MonedaPeso       = "PES" // Peso argentino
	MonedaCotizacion = "1"   // Cotización fija: se factura siempre en pesos
)
