package dto

// ErrorResponse cuerpo de error HTTP: {"code": "...", "detail": "..."}.
// La consola muestra Detail tal cual al cajero.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// HealthResponse respuesta de GET /health y /api/health.
// Checks trae el estado de cada dependencia ("ok" o el motivo de la falla).
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Healthy indica si el backend reportó estado sano.
func (h HealthResponse) Healthy() bool { return h.Status == "healthy" }
