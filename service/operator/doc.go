// SPDX-License-Identifier: BSD-3-Clause

// Package operator provides a service orchestrator that manages and
// supervises the tailord daemon's services in a fault-tolerant manner. It
// acts as the central coordinator for the fan, LED, profile, performance,
// backlight, and hardware-report services, handling service lifecycle
// management, inter-process communication setup, and providing a
// supervision tree for automatic service recovery.
//
// # Architecture
//
// The operator follows a supervision tree pattern: the IPC transport
// starts first, then every configured service.Service is added to an
// oversight.Tree with a transient restart policy. A service that returns
// an error is restarted; one that returns nil is treated as done. This is
// a single-process, cooperative supervision model: the operator supervises
// goroutines, it does not itself own any device state.
//
// Unlike the generic IPC transport, the domain services have no useful
// zero-value default: fanmgr, ledmgr, and profilemgr are constructed over
// a shared *store.Store and runtime handles; perfmgr and backlightmgr are
// constructed over a hwdevice.FanDevice/BacklightDevice; hwreport is
// constructed over all of the above. cmd/tailord builds these at startup
// (hardware adapters, fan/LED runtimes, the coordinator) and passes the
// finished service.Service values in via options:
//
//	op := operator.New(
//		operator.WithName("tailord"),
//		operator.WithCoordinator(coord),
//		operator.WithFanmgr(fanSvc),
//		operator.WithLedmgr(ledSvc),
//		operator.WithProfilemgr(profileSvc),
//		operator.WithPerfmgr(perfSvc),
//		operator.WithBacklightmgr(backlightSvc),
//		operator.WithHwreport(reportSvc),
//	)
//	if err := op.Run(ctx, nil); err != nil {
//		...
//	}
//
// A nil service (the default) is simply not added to the supervision
// tree; a platform with no ODM performance controller, for instance, runs
// with perfmgr left unset.
package operator
