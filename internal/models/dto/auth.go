package dto

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" required:"true"`
	Password string `json:"password" required:"true"`
}

// LoginResponse is returned on a successful login. The session travels in a cookie.
type LoginResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
}

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
