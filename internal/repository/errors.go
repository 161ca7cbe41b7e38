// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound covers every missing-row lookup so handlers can
// translate it into an HTTP 404 without inspecting sql.ErrNoRows, and
// ErrEmailExists signals a duplicate registration attempt.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Repositories
// translate sql.ErrNoRows into this sentinel at the boundary so callers
// never depend on database/sql directly.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert collides with the unique
// email index. Handlers should translate this into an HTTP 409 or a
// field error on the registration form.
var ErrEmailExists = errors.New("email already exists")

// ErrProfileExists is returned when a second profile is created for a
// user that already has one. The profile relation is strictly
// one-to-one.
var ErrProfileExists = errors.New("profile already exists")
