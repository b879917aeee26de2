// SPDX-License-Identifier: BSD-3-Clause

// Package fanmgr exposes the fan profile store and the running fan
// control loops over NATS: profile CRUD, rename, and a best-effort
// manual speed override per fan index, plus the fan count query used by
// front-ends to size their per-fan controls.
//
// # Service Architecture
//
// The service follows the standard daemon service pattern:
//   - NATS-based IPC for inter-service communication
//   - Microservice endpoints registered per subject via pkg/ipc
//   - Context-aware operations with OpenTelemetry spans
//   - Structured logging with slog
package fanmgr
