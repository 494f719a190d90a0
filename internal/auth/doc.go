// Package auth holds the credential primitives: bcrypt password hashing,
// signed session cookies backed by an in-memory session store, and the gate
// that turns a session into an authenticated or admin-authorized user.
package auth
