package entity

import "time"

// Entornos AFIP válidos para credenciales, tokens y comprobantes.
const (
	EntornoProduccion = "production"
	EntornoTesting    = "testing" // homologación
)

// Credencial material fiscal del emisor para un entorno AFIP.
// Se aprovisiona fuera de banda por un operador (cmd/seed_afip); este
// subsistema solo la lee. Debe existir exactamente una fila activa por entorno.
type Credencial struct {
	ID              string
	Entorno         string // production | testing
	CUIT            string
	PuntoVenta      int
	CondicionIVA    string // monotributo | responsable_inscripto
	ClavePrivadaPEM string // puede contener "\n" literales según el almacenamiento
	CertificadoPEM  string
	Activa          bool
	CreatedAt       time.Time
}
