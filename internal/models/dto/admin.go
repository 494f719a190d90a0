package dto

// CreateUserRequest is the body of POST /admin/init_admin and POST /admin/create_user.
type CreateUserRequest struct {
	Username string  `json:"username" required:"true"`
	Password string  `json:"password" required:"true"`
	Role     *string `json:"role,omitempty"`
}

// InitAdminResponse is returned when an admin account is bootstrapped.
type InitAdminResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// CreateUserResponse is returned when an admin creates a user.
type CreateUserResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
}
