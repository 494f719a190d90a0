// Package policy names the access rules for the two endpoints that are
// unauthenticated by default: admin bootstrap and user listing.
package policy

import "fmt"

// Bootstrap controls who may call the bootstrap-admin operation.
type Bootstrap string

const (
	// BootstrapOpen lets anyone create an admin under a free username.
	BootstrapOpen Bootstrap = "open"
	// BootstrapFirstRun allows bootstrap only while no user exists.
	BootstrapFirstRun Bootstrap = "first-run"
	// BootstrapDisabled rejects every bootstrap attempt.
	BootstrapDisabled Bootstrap = "disabled"
)

// ListUsers controls who may list users.
type ListUsers string

const (
	ListPublic        ListUsers = "public"
	ListAuthenticated ListUsers = "authenticated"
	ListAdmin         ListUsers = "admin"
)

// Policies bundles both rules.
type Policies struct {
	Bootstrap Bootstrap
	ListUsers ListUsers
}

// Default keeps both endpoints open.
func Default() Policies {
	return Policies{Bootstrap: BootstrapOpen, ListUsers: ListPublic}
}

// ParseBootstrap validates a BOOTSTRAP_ADMIN_POLICY value.
func ParseBootstrap(v string) (Bootstrap, error) {
	switch p := Bootstrap(v); p {
	case BootstrapOpen, BootstrapFirstRun, BootstrapDisabled:
		return p, nil
	}
	return "", fmt.Errorf("bootstrap policy must be one of: open, first-run, disabled (got %q)", v)
}

// ParseListUsers validates a LIST_USERS_POLICY value.
func ParseListUsers(v string) (ListUsers, error) {
	switch p := ListUsers(v); p {
	case ListPublic, ListAuthenticated, ListAdmin:
		return p, nil
	}
	return "", fmt.Errorf("list users policy must be one of: public, authenticated, admin (got %q)", v)
}
