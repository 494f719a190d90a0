package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/userdesk/internal/accounts"
	"github.com/hongminglow/userdesk/internal/http/apidoc"
	"github.com/hongminglow/userdesk/internal/http/respond"
	"github.com/hongminglow/userdesk/internal/models/dto"
)

// AdminHandler owns admin bootstrap and privileged user creation.
type AdminHandler struct {
	svc    Accounts
	cookie SessionCookie
	logger *slog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc Accounts, cookie SessionCookie, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, cookie: cookie, logger: loggerOrDefault(logger)}
}

// Register attaches admin routes to the mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/init_admin", h.handleInitAdmin)
	mux.HandleFunc("POST /admin/create_user", h.handleCreateUser)
}

// Routes describes the admin namespace for the API docs.
func (h *AdminHandler) Routes() []apidoc.Route {
	return []apidoc.Route{
		{
			Method:      http.MethodPost,
			Path:        "/admin/init_admin",
			Namespace:   "admin",
			OperationID: "init_admin",
			Summary:     "Create an administrator account",
			Request:     new(dto.CreateUserRequest),
			Responses: map[int]any{
				http.StatusCreated:    new(dto.InitAdminResponse),
				http.StatusBadRequest: new(dto.ErrorResponse),
				http.StatusForbidden:  new(dto.ErrorResponse),
				http.StatusConflict:   new(dto.ErrorResponse),
			},
		},
		{
			Method:      http.MethodPost,
			Path:        "/admin/create_user",
			Namespace:   "admin",
			OperationID: "create_user",
			Summary:     "Create a regular user (admin session required)",
			Request:     new(dto.CreateUserRequest),
			CookieAuth:  true,
			Responses: map[int]any{
				http.StatusCreated:      new(dto.CreateUserResponse),
				http.StatusBadRequest:   new(dto.ErrorResponse),
				http.StatusUnauthorized: new(dto.ErrorResponse),
				http.StatusForbidden:    new(dto.ErrorResponse),
				http.StatusConflict:     new(dto.ErrorResponse),
			},
		},
	}
}

func (h *AdminHandler) handleInitAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.svc.BootstrapAdmin(r.Context(), accounts.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgEnterCredentials)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.InitAdminResponse{
		OK:       true,
		Message:  "Admin init successfully",
		Username: user.Username,
	})
}

func (h *AdminHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	token := h.cookie.read(r)

	var req dto.CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		// Privilege failures outrank payload errors.
		if _, authErr := h.svc.Authorize(r.Context(), token); authErr != nil {
			writeServiceError(w, r, h.logger, authErr, msgCredentialsRequired)
			return
		}
		respond.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), token, accounts.NewUser{
		Credentials: accounts.Credentials{Username: req.Username, Password: req.Password},
		Role:        req.Role,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgCredentialsRequired)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreateUserResponse{OK: true, Username: user.Username})
}
