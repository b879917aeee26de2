// SPDX-License-Identifier: BSD-3-Clause

// Package perfmgr exposes ODM performance profile switching over NATS. It
// is a thin passthrough over hwdevice.FanDevice's performance methods: no
// store, no profile JSON, no reload trigger. Platforms with no performance
// controller answer every request with ErrDeviceUnavailable.
package perfmgr
