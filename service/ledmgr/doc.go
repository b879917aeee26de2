// SPDX-License-Identifier: BSD-3-Clause

// Package ledmgr exposes the LED profile store and the running LED
// animation runtimes over NATS: profile CRUD, rename, a direct-color
// override per zone, and a device listing used by front-ends to render
// one control per addressable LED zone.
//
// # Service Architecture
//
// The service follows the standard daemon service pattern:
//   - NATS-based IPC for inter-service communication
//   - Microservice endpoints registered per subject via pkg/ipc
//   - Context-aware operations with OpenTelemetry spans
//   - Structured logging with slog
package ledmgr
