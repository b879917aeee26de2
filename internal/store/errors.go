// SPDX-License-Identifier: BSD-3-Clause

package store

import "errors"

// Sentinel errors mapping onto the Validation/NotFound/Conflict/IO taxonomy:
// transport handlers convert these to the bus's standard error shape via
// errors.Is, the coordinator downgrades them to warnings.
var (
	// ErrValidation indicates a malformed name, malformed document, or a
	// constraint violation caught at load time.
	ErrValidation = errors.New("store: validation failed")
	// ErrNotFound indicates the named profile does not exist.
	ErrNotFound = errors.New("store: profile not found")
	// ErrConflict indicates a rename or copy target already exists.
	ErrConflict = errors.New("store: target already exists")
	// ErrReservedName indicates the caller used the reserved name
	// "active_profile".
	ErrReservedName = errors.New("store: \"active_profile\" is reserved")
)
