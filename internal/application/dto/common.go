package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FatalResponse error fatal del orquestador: siempre un cuerpo JSON parseable,
// con stack opcional para diagnóstico en entornos no productivos.
type FatalResponse struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}
