package httpdto

// RegisterRequest is used for POST /register
type RegisterRequest struct {
	Username  string `form:"username"`
	Password  string `form:"password"`
	PwConfirm string `form:"pwConfirm"`
}

// LoginRequest is used for POST /login. Registration reuses it to log the
// new user in from the same form.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// AuthResponse is the envelope every /register and /login call returns.
// CSRFToken is the token the next form submission must carry.
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	CSRFToken string `json:"csrfToken"`
}
