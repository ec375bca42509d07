package httpdto

func NewAuthSuccess(csrfToken string) AuthResponse {
	return AuthResponse{
		Success:   true,
		CSRFToken: csrfToken,
	}
}

func NewAuthFailure(message, csrfToken string) AuthResponse {
	return AuthResponse{
		Success:   false,
		Message:   message,
		CSRFToken: csrfToken,
	}
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
