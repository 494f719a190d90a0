package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/userdesk/internal/http/apidoc"
	"github.com/hongminglow/userdesk/internal/http/respond"
	"github.com/hongminglow/userdesk/internal/models/dto"
)

// ListHandler serves the user listing.
type ListHandler struct {
	svc    Accounts
	cookie SessionCookie
	logger *slog.Logger
}

// NewListHandler constructs the handler.
func NewListHandler(svc Accounts, cookie SessionCookie, logger *slog.Logger) *ListHandler {
	return &ListHandler{svc: svc, cookie: cookie, logger: loggerOrDefault(logger)}
}

// Register attaches the listing route to the mux.
func (h *ListHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /list/list_user", h.handleListUsers)
}

// Routes describes the List namespace for the API docs.
func (h *ListHandler) Routes() []apidoc.Route {
	return []apidoc.Route{{
		Method:      http.MethodGet,
		Path:        "/list/list_user",
		Namespace:   "List",
		OperationID: "list_users",
		Summary:     "List every user",
		CookieAuth:  true,
		Responses: map[int]any{
			http.StatusOK:           new(dto.ListUsersResponse),
			http.StatusUnauthorized: new(dto.ErrorResponse),
			http.StatusForbidden:    new(dto.ErrorResponse),
		},
	}}
}

func (h *ListHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), h.cookie.read(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgCredentialsRequired)
		return
	}
	respond.JSON(w, http.StatusOK, dto.ListUsersResponse{OK: true, Users: dto.Summaries(users)})
}
