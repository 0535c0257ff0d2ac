package models

// ErrorResponse is a simple error shape for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FilesResponse se retorna cuando el cliente pide format=xlsx: lista los
// archivos generados y cuántas filas quedaron en cada categoría.
type FilesResponse struct {
	Files    []string `json:"files"`
	Reserved int      `json:"reserved,omitempty"`
	Blocked  int      `json:"blocked,omitempty"`
}
