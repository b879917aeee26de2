// SPDX-License-Identifier: BSD-3-Clause

// Package hwreport serves a best-effort live snapshot of fan, LED, and
// backlight state over NATS: current readings straight from the hardware
// devices, plus the active profile name from the store. It is explicitly
// non-authoritative diagnostic plumbing, never a dependency of the
// activation coordinator or of any reload path (see
// internal/store.Store.Watch and internal/coordinator).
package hwreport
