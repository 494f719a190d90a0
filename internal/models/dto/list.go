package dto

import "github.com/hongminglow/userdesk/internal/models"

// UserSummary is the public projection of a user; it never carries the password hash.
type UserSummary struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Admin    bool    `json:"admin"`
	Role     *string `json:"role"`
}

// ListUsersResponse is the body of GET /list/list_user.
type ListUsersResponse struct {
	OK    bool          `json:"ok"`
	Users []UserSummary `json:"users"`
}

// Summaries projects stored users for the listing endpoint.
func Summaries(users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Username: u.Username, Admin: u.Admin, Role: u.Role})
	}
	return out
}
