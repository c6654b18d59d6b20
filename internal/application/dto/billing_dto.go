package dto

// FacturacionRequest cuerpo del POST /api/facturacion.
type FacturacionRequest struct {
	Action      string `json:"action"`                // "status" | "generate"
	OrderID     string `json:"orderId,omitempty"`     // requerido para generate
	Environment string `json:"environment,omitempty"` // "production" | "testing"; default production
}

// EstadoResponse respuesta de la acción status.
type EstadoResponse struct {
	Status      string `json:"status"` // "online"
	LastVoucher int64  `json:"last_voucher"`
}

// GenerarResponse respuesta de la acción generate. Un rechazo de AFIP llega
// con Success=false y la razón parseada; no es un error HTTP.
type GenerarResponse struct {
	Success     bool   `json:"success"`
	CAE         string `json:"cae,omitempty"`
	Numero      int64  `json:"number,omitempty"`
	Error       string `json:"error,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}
