// SPDX-License-Identifier: BSD-3-Clause

package perfmgr

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the performance manager service is already running.
	ErrServiceAlreadyStarted = errors.New("performance manager service already started")
	// ErrInvalidConfiguration indicates that the performance manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid performance manager configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
)
