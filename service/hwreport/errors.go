// SPDX-License-Identifier: BSD-3-Clause

package hwreport

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the hardware report service is already running.
	ErrServiceAlreadyStarted = errors.New("hardware report service already started")
	// ErrInvalidConfiguration indicates that the hardware report configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid hardware report configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
)
