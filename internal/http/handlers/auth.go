package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/userdesk/internal/accounts"
	"github.com/hongminglow/userdesk/internal/http/apidoc"
	"github.com/hongminglow/userdesk/internal/http/respond"
	"github.com/hongminglow/userdesk/internal/models/dto"
)

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	svc    Accounts
	cookie SessionCookie
	logger *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc Accounts, cookie SessionCookie, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie, logger: loggerOrDefault(logger)}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.handleLogin)
}

// Routes describes the auth namespace for the API docs.
func (h *AuthHandler) Routes() []apidoc.Route {
	return []apidoc.Route{{
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Namespace:   "auth",
		OperationID: "login",
		Summary:     "Log in and receive a session cookie",
		Request:     new(dto.LoginRequest),
		Responses: map[int]any{
			http.StatusOK:           new(dto.LoginResponse),
			http.StatusBadRequest:   new(dto.ErrorResponse),
			http.StatusUnauthorized: new(dto.ErrorResponse),
		},
	}}
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	res, err := h.svc.Login(r.Context(), accounts.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgEnterCredentials)
		return
	}

	h.cookie.set(w, res.Token)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{OK: true, Username: res.User.Username})
}
