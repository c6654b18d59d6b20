package entity

import "time"

// TokenAFIP ticket de acceso emitido por el WSAA, cacheado en DB.
// Las filas nunca se mutan: un token vencido se supersede con una fila nueva.
type TokenAFIP struct {
	ID         string
	Entorno    string
	Token      string
	Sign       string
	Expiracion time.Time
	CreatedAt  time.Time
}

// Vigente indica si el token sigue siendo utilizable (expiración estrictamente futura).
func (t *TokenAFIP) Vigente(now time.Time) bool {
	return now.Before(t.Expiracion)
}
