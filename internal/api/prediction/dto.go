package prediction

type PredictRequest struct {
	Image string `json:"image" validate:"required"`
}

type PreflightResponse struct {
	Message string `json:"message"`
}

type StreamError struct {
	Error string `json:"error"`
}

const (
	AllowedMethods = "POST, OPTIONS"
	AllowedHeaders = "Content-Type"
	AllowedOrigin  = "*"
)
