package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound = errors.New("recurso no encontrado")
	// ErrPedidoNotFound el pedido a facturar no existe.
	ErrPedidoNotFound = errors.New("pedido no encontrado")
	// ErrCredencialesFaltantes no hay credenciales AFIP activas para el entorno:
	// el sistema no está configurado y un operador debe aprovisionarlas.
	ErrCredencialesFaltantes = errors.New("sistema no configurado: faltan credenciales AFIP activas")
	// ErrFirma el material criptográfico almacenado (clave/certificado) es inválido
	// o no corresponde entre sí. Fatal y no reintentable.
	ErrFirma = errors.New("material criptográfico inválido")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
)
