// SPDX-License-Identifier: BSD-3-Clause

// Package profilemgr exposes global-profile CRUD, the active-profile
// pointer, and the explicit reload trigger over NATS. It is the one
// service allowed to mutate the active pointer, and the one that
// requests a coordinator reload directly rather than inferring one from
// a store write: on explicit reload requests, on activating a different
// global profile, and on renaming the active global profile.
package profilemgr
